// Package addr implements the canonical address form used by the ledger:
// a Base58Check-encoded RIPEMD160(SHA256(pubkey)) payload with a two-byte
// network prefix, plus extraction from and construction of the standard
// pay-to-pubkey-hash script shape.
package addr

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/decred/base58"
	"golang.org/x/crypto/ripemd160"
)

// AddressVersion is the two-byte Base58Check prefix for pay-to-pubkey-hash
// addresses on the main network.
var AddressVersion = [2]byte{0x0f, 0x21}

// HashSize is the length of an address payload in bytes.
const HashSize = ripemd160.Size

const (
	opDup         = 0x76
	opHash160     = 0xa9
	opData20      = 0x14
	opEqualVerify = 0x88
	opCheckSig    = 0xac
)

// Address is an opaque account identifier. The zero value is the invalid
// sentinel used for the absent parent of a root account.
type Address struct {
	hash  [HashSize]byte
	valid bool
}

// NewAddress returns the address for the given 20-byte pubkey hash.
func NewAddress(hash [HashSize]byte) Address {
	return Address{hash: hash, valid: true}
}

// NewAddressFromPubKey hashes the serialized public key and returns the
// resulting address.
func NewAddressFromPubKey(pubKey []byte) Address {
	return Address{hash: Hash160(pubKey), valid: true}
}

// IsValid reports whether a is a real address rather than the invalid
// sentinel.
func (a Address) IsValid() bool { return a.valid }

// Hash160 returns the 20-byte payload of the address.
func (a Address) Hash160() [HashSize]byte { return a.hash }

// Less defines a total order over addresses. The invalid sentinel sorts
// before every valid address.
func (a Address) Less(b Address) bool {
	if a.valid != b.valid {
		return !a.valid
	}
	return bytes.Compare(a.hash[:], b.hash[:]) < 0
}

// String returns the Base58Check form of the address, or the empty string
// for the invalid sentinel.
func (a Address) String() string { return Encode(a) }

// Encode returns the Base58Check form of the address. The invalid sentinel
// encodes to the empty string.
func Encode(a Address) string {
	if !a.valid {
		return ""
	}
	return base58.CheckEncode(a.hash[:], AddressVersion)
}

// Decode parses a Base58Check address. The empty string decodes to the
// invalid sentinel without error, mirroring Encode.
func Decode(s string) (Address, error) {
	if s == "" {
		return Address{}, nil
	}
	payload, version, err := base58.CheckDecode(s)
	if err != nil {
		return Address{}, fmt.Errorf("decode address %q: %w", s, err)
	}
	if version != AddressVersion {
		return Address{}, fmt.Errorf("decode address %q: unknown version %x", s, version)
	}
	if len(payload) != HashSize {
		return Address{}, fmt.Errorf("decode address %q: payload is %d bytes", s, len(payload))
	}
	var hash [HashSize]byte
	copy(hash[:], payload)
	return Address{hash: hash, valid: true}, nil
}

// Hash160 computes RIPEMD160(SHA256(b)).
func Hash160(b []byte) [HashSize]byte {
	sha := sha256.Sum256(b)
	h := ripemd160.New()
	h.Write(sha[:])
	var out [HashSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ExtractAddress recovers the address from a standard pay-to-pubkey-hash
// script. Scripts of any other shape yield the invalid sentinel.
func ExtractAddress(pkScript []byte) Address {
	if len(pkScript) != 25 ||
		pkScript[0] != opDup ||
		pkScript[1] != opHash160 ||
		pkScript[2] != opData20 ||
		pkScript[23] != opEqualVerify ||
		pkScript[24] != opCheckSig {
		return Address{}
	}
	var hash [HashSize]byte
	copy(hash[:], pkScript[3:23])
	return Address{hash: hash, valid: true}
}

// PayToAddrScript builds the standard pay-to-pubkey-hash script for the
// given address.
func PayToAddrScript(a Address) ([]byte, error) {
	if !a.valid {
		return nil, fmt.Errorf("pay-to-addr script for invalid address")
	}
	script := make([]byte, 0, 25)
	script = append(script, opDup, opHash160, opData20)
	script = append(script, a.hash[:]...)
	script = append(script, opEqualVerify, opCheckSig)
	return script, nil
}
