package consensus

import "encoding/binary"

// readCompactSize decodes one Bitcoin-style CompactSize varint from b at
// *off, advancing the cursor. Non-minimal encodings are rejected.
func readCompactSize(b []byte, off *int) (uint64, error) {
	tag, err := readU8(b, off)
	if err != nil {
		return 0, err
	}

	switch {
	case tag < 0xfd:
		return uint64(tag), nil
	case tag == 0xfd:
		if *off+2 > len(b) {
			return 0, parseError("unexpected EOF (CompactSize u16)")
		}
		v := binary.LittleEndian.Uint16(b[*off : *off+2])
		*off += 2
		if v < 0xfd {
			return 0, parseError("non-minimal CompactSize (0xfd)")
		}
		return uint64(v), nil
	case tag == 0xfe:
		v, err := readU32le(b, off)
		if err != nil {
			return 0, err
		}
		if v <= 0xffff {
			return 0, parseError("non-minimal CompactSize (0xfe)")
		}
		return uint64(v), nil
	default:
		v, err := readU64le(b, off)
		if err != nil {
			return 0, err
		}
		if v <= 0xffff_ffff {
			return 0, parseError("non-minimal CompactSize (0xff)")
		}
		return v, nil
	}
}

// AppendCompactSize encodes n in Bitcoin-style CompactSize and appends to
// dst.
func AppendCompactSize(dst []byte, n uint64) []byte {
	switch {
	case n < 0xfd:
		return append(dst, byte(n))
	case n <= 0xffff:
		dst = append(dst, 0xfd)
		return appendU16le(dst, uint16(n))
	case n <= 0xffff_ffff:
		dst = append(dst, 0xfe)
		return appendU32le(dst, uint32(n))
	default:
		dst = append(dst, 0xff)
		return appendU64le(dst, n)
	}
}

func appendU16le(dst []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(dst, tmp[:]...)
}

func appendU32le(dst []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(dst, tmp[:]...)
}

func appendU64le(dst []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(dst, tmp[:]...)
}
