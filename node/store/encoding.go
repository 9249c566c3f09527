package store

import (
	"encoding/binary"
	"fmt"

	"tessera.dev/node/addr"
	"tessera.dev/node/consensus"
)

// Outpoint keys: tx hash (32) | index u32le.
func encodeOutpointKey(op consensus.OutPoint) []byte {
	out := make([]byte, 36)
	copy(out[0:32], op.Hash[:])
	binary.LittleEndian.PutUint32(out[32:36], op.Index)
	return out
}

func decodeOutpointKey(b []byte) (consensus.OutPoint, error) {
	if len(b) != 36 {
		return consensus.OutPoint{}, fmt.Errorf("store: outpoint key is %d bytes", len(b))
	}
	var op consensus.OutPoint
	copy(op.Hash[:], b[0:32])
	op.Index = binary.LittleEndian.Uint32(b[32:36])
	return op, nil
}

// Coin entries:
// kind u8 | coinbase u8 | height u32le | word u64le | pk_script bytes.
func encodeCoinEntry(c consensus.Coin) []byte {
	out := make([]byte, 14+len(c.Out.PkScript))
	out[0] = byte(c.Out.Kind())
	if c.IsCoinBase {
		out[1] = 1
	}
	binary.LittleEndian.PutUint32(out[2:6], uint32(c.Height))
	binary.LittleEndian.PutUint64(out[6:14], c.Out.Word())
	copy(out[14:], c.Out.PkScript)
	return out
}

func decodeCoinEntry(b []byte) (consensus.Coin, error) {
	if len(b) < 14 {
		return consensus.Coin{}, fmt.Errorf("store: coin entry truncated (%d bytes)", len(b))
	}
	kind := consensus.OutputKind(b[0])
	isCoinBase := b[1] != 0
	height := int32(binary.LittleEndian.Uint32(b[2:6]))
	word := binary.LittleEndian.Uint64(b[6:14])
	pkScript := append([]byte(nil), b[14:]...)

	out, err := consensus.NewTxOutFromWord(kind, word, pkScript)
	if err != nil {
		return consensus.Coin{}, fmt.Errorf("store: coin entry: %w", err)
	}
	return consensus.Coin{Out: out, Height: height, IsCoinBase: isCoinBase}, nil
}

// Role keys: the 20-byte address payload. Role entries: word u64le.
func encodeAddressKey(a addr.Address) ([]byte, error) {
	if !a.IsValid() {
		return nil, fmt.Errorf("store: invalid address key")
	}
	hash := a.Hash160()
	return hash[:], nil
}

func decodeAddressKey(b []byte) (addr.Address, error) {
	if len(b) != addr.HashSize {
		return addr.Address{}, fmt.Errorf("store: address key is %d bytes", len(b))
	}
	var hash [addr.HashSize]byte
	copy(hash[:], b)
	return addr.NewAddress(hash), nil
}

func encodeRoleEntry(roles consensus.RoleSet) []byte {
	out := consensus.NewRoleTxOut(roles, nil)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], out.Word())
	return buf[:]
}

func decodeRoleEntry(b []byte) (consensus.RoleSet, error) {
	if len(b) != 8 {
		return consensus.RoleSet{}, fmt.Errorf("store: role entry is %d bytes", len(b))
	}
	return consensus.RoleSetFromWord(binary.LittleEndian.Uint64(b))
}
