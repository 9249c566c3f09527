package consensus

// The 64-bit output word overlays three interpretations selected by the
// top two bits:
//
//	0x  coin    whole word as a signed little-endian amount
//	10  role    bits 61..56 = M C L R A D, bits 55..0 reserved (zero)
//	11  policy  bit 61 = permanent, bits 60..32 = change type,
//	            bits 31..0 = parameter
//
// The overlay must round-trip byte for byte; reserved bits are zero on
// encode and are checked on decode.

// WordMode values as read from the top two bits of an output word.
type WordMode uint8

const (
	MODE_COIN   WordMode = 0b00
	MODE_ROLE   WordMode = 0b10
	MODE_POLICY WordMode = 0b11
)

const (
	wordModeShift = 62
	wordModeMask  = uint64(0b11) << wordModeShift

	roleFlagShift    = 56
	roleReservedMask = (uint64(1) << roleFlagShift) - 1

	roleBitM = uint64(1) << 61
	roleBitC = uint64(1) << 60
	roleBitL = uint64(1) << 59
	roleBitR = uint64(1) << 58
	roleBitA = uint64(1) << 57
	roleBitD = uint64(1) << 56

	policyPermanentBit = uint64(1) << 61
	policyTypeShift    = 32
	policyTypeMask     = uint64(1)<<29 - 1
	policyParamMask    = uint64(1)<<32 - 1
)

// ModeOf dispatches on the top two bits of a word. A clear top bit means
// coin regardless of bit 62.
func ModeOf(word uint64) WordMode {
	if word>>63 == 0 {
		return MODE_COIN
	}
	return WordMode(word >> wordModeShift)
}
