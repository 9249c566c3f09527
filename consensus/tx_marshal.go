package consensus

func appendOutPoint(dst []byte, op OutPoint) []byte {
	dst = append(dst, op.Hash[:]...)
	return appendU32le(dst, op.Index)
}

func appendTxIn(dst []byte, in *TxIn) []byte {
	dst = appendOutPoint(dst, in.PrevOut)
	dst = AppendCompactSize(dst, uint64(len(in.ScriptSig)))
	dst = append(dst, in.ScriptSig...)
	return appendU32le(dst, in.Sequence)
}

func appendTxOut(dst []byte, out *TxOut) []byte {
	dst = appendU64le(dst, out.word)
	dst = AppendCompactSize(dst, uint64(len(out.PkScript)))
	return append(dst, out.PkScript...)
}

// MarshalTxNoWitness serializes tx in the basic wire form, omitting all
// witness data. This is the serialization the transaction hash commits to.
func MarshalTxNoWitness(tx *Tx) []byte {
	var b []byte
	b = appendU32le(b, uint32(tx.Version))
	b = AppendCompactSize(b, uint64(len(tx.Vin)))
	for i := range tx.Vin {
		b = appendTxIn(b, &tx.Vin[i])
	}
	b = AppendCompactSize(b, uint64(len(tx.Vout)))
	for i := range tx.Vout {
		b = appendTxOut(b, &tx.Vout[i])
	}
	return appendU32le(b, tx.LockTime)
}

// MarshalTx serializes tx in its canonical wire form: the basic form when
// no input carries a witness, the dummy-and-flags extended form otherwise.
// For a transaction with at least one input the output is the exact
// inverse of ParseTx; an empty vin followed by outputs is read back by
// ParseTx as the extended-form marker.
func MarshalTx(tx *Tx) []byte {
	if !tx.HasWitness() {
		return MarshalTxNoWitness(tx)
	}

	var b []byte
	b = appendU32le(b, uint32(tx.Version))
	b = AppendCompactSize(b, 0) // dummy vin marking the extended form
	b = append(b, 0x01)         // flags: witness present
	b = AppendCompactSize(b, uint64(len(tx.Vin)))
	for i := range tx.Vin {
		b = appendTxIn(b, &tx.Vin[i])
	}
	b = AppendCompactSize(b, uint64(len(tx.Vout)))
	for i := range tx.Vout {
		b = appendTxOut(b, &tx.Vout[i])
	}
	for i := range tx.Vin {
		stack := tx.Vin[i].Witness
		b = AppendCompactSize(b, uint64(len(stack)))
		for _, item := range stack {
			b = AppendCompactSize(b, uint64(len(item)))
			b = append(b, item...)
		}
	}
	return appendU32le(b, tx.LockTime)
}
