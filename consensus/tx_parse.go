package consensus

// outputKindAt reconstructs the kind of the output at index for the given
// transaction version. The wire carries no tag: coinbase transfers are
// coin throughout, every other version leads with the role repeat,
// fee-paying versions follow with a coin change output, and the rest of
// vout is the version's payload kind.
func outputKindAt(version int32, index int) (OutputKind, error) {
	if version == VERSION_COINBASE_TRANSFER {
		return OUT_COIN, nil
	}
	if !IsKnownVersion(version) {
		return OUT_UNINITIALIZED, parseError("unknown transaction version %d", version)
	}
	if index == 0 {
		return OUT_ROLE, nil
	}
	if index == 1 && HasChangeOutput(version) {
		return OUT_COIN, nil
	}
	kind, _ := PayloadKind(version)
	return kind, nil
}

// checkOutputWord validates word against the reconstructed kind. Role and
// policy words must carry the right mode bits; role reserved bits must be
// zero. Coin words are raw signed amounts and are screened later by
// validation.
func checkOutputWord(kind OutputKind, word uint64, index int) error {
	switch kind {
	case OUT_ROLE:
		if _, err := RoleSetFromWord(word); err != nil {
			return parseError("vout[%d]: %v", index, err)
		}
	case OUT_POLICY:
		if _, err := PolicyRecordFromWord(word); err != nil {
			return parseError("vout[%d]: %v", index, err)
		}
	}
	return nil
}

func readOutPoint(b []byte, off *int) (OutPoint, error) {
	hashBytes, err := readBytes(b, off, 32)
	if err != nil {
		return OutPoint{}, err
	}
	var op OutPoint
	copy(op.Hash[:], hashBytes)
	op.Index, err = readU32le(b, off)
	return op, err
}

func readTxInVector(b []byte, off *int) ([]TxIn, error) {
	count, err := readCompactSize(b, off)
	if err != nil {
		return nil, err
	}
	// Each input is at least 41 bytes on the wire.
	if count > uint64(len(b)-*off)/41+1 {
		return nil, parseError("input count %d exceeds remaining bytes", count)
	}
	vin := make([]TxIn, 0, count)
	for i := uint64(0); i < count; i++ {
		prevOut, err := readOutPoint(b, off)
		if err != nil {
			return nil, err
		}
		sigLen, err := readCompactSize(b, off)
		if err != nil {
			return nil, err
		}
		if sigLen > uint64(len(b)-*off) {
			return nil, parseError("script_sig length %d exceeds remaining bytes", sigLen)
		}
		scriptSig, err := readBytes(b, off, int(sigLen))
		if err != nil {
			return nil, err
		}
		sequence, err := readU32le(b, off)
		if err != nil {
			return nil, err
		}
		vin = append(vin, TxIn{
			PrevOut:   prevOut,
			ScriptSig: scriptSig,
			Sequence:  sequence,
		})
	}
	return vin, nil
}

func readTxOutVector(b []byte, off *int, version int32) ([]TxOut, error) {
	count, err := readCompactSize(b, off)
	if err != nil {
		return nil, err
	}
	// Each output is at least 9 bytes on the wire.
	if count > uint64(len(b)-*off)/9+1 {
		return nil, parseError("output count %d exceeds remaining bytes", count)
	}
	vout := make([]TxOut, 0, count)
	for i := uint64(0); i < count; i++ {
		word, err := readU64le(b, off)
		if err != nil {
			return nil, err
		}
		scriptLen, err := readCompactSize(b, off)
		if err != nil {
			return nil, err
		}
		if scriptLen > uint64(len(b)-*off) {
			return nil, parseError("script_pub_key length %d exceeds remaining bytes", scriptLen)
		}
		pkScript, err := readBytes(b, off, int(scriptLen))
		if err != nil {
			return nil, err
		}
		kind, err := outputKindAt(version, int(i))
		if err != nil {
			return nil, err
		}
		if err := checkOutputWord(kind, word, int(i)); err != nil {
			return nil, err
		}
		vout = append(vout, TxOut{kind: kind, word: word, PkScript: pkScript})
	}
	return vout, nil
}

// ParseTx deserializes a transaction from its wire form, reconstructing
// each output's kind from (version, index). The whole buffer must be
// consumed; trailing bytes are a parse failure.
func ParseTx(b []byte) (*Tx, error) {
	off := 0

	versionU, err := readU32le(b, &off)
	if err != nil {
		return nil, err
	}
	version := int32(versionU)

	var flags uint8
	vin, err := readTxInVector(b, &off)
	if err != nil {
		return nil, err
	}
	var vout []TxOut
	if len(vin) == 0 {
		// Either a dummy marking the extended form, or a truly empty vin.
		flags, err = readU8(b, &off)
		if err != nil {
			return nil, err
		}
		if flags != 0 {
			vin, err = readTxInVector(b, &off)
			if err != nil {
				return nil, err
			}
			vout, err = readTxOutVector(b, &off, version)
			if err != nil {
				return nil, err
			}
		}
	} else {
		vout, err = readTxOutVector(b, &off, version)
		if err != nil {
			return nil, err
		}
	}

	if flags&1 != 0 {
		flags ^= 1
		for i := range vin {
			itemCount, err := readCompactSize(b, &off)
			if err != nil {
				return nil, err
			}
			if itemCount > uint64(len(b)-off) {
				return nil, parseError("witness item count %d exceeds remaining bytes", itemCount)
			}
			stack := make([][]byte, 0, itemCount)
			for j := uint64(0); j < itemCount; j++ {
				itemLen, err := readCompactSize(b, &off)
				if err != nil {
					return nil, err
				}
				if itemLen > uint64(len(b)-off) {
					return nil, parseError("witness item length %d exceeds remaining bytes", itemLen)
				}
				item, err := readBytes(b, &off, int(itemLen))
				if err != nil {
					return nil, err
				}
				stack = append(stack, item)
			}
			vin[i].Witness = stack
		}
	}
	if flags != 0 {
		return nil, parseError("unknown transaction optional data (flags %#02x)", flags)
	}

	lockTime, err := readU32le(b, &off)
	if err != nil {
		return nil, err
	}
	if off != len(b) {
		return nil, parseError("%d trailing bytes after transaction", len(b)-off)
	}

	return NewTx(version, vin, vout, lockTime), nil
}
