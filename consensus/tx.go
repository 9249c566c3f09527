package consensus

const (
	// COIN is the number of base units in one coin.
	COIN = 100_000_000

	// MAX_MONEY is the largest amount a single output or output total may
	// carry. It is a sanity cap, not the circulating supply.
	MAX_MONEY = 21_000_000 * COIN

	COINBASE_MATURITY    = 100
	WITNESS_SCALE_FACTOR = 4
	MAX_BLOCK_WEIGHT     = 4_000_000

	// LOCKTIME_THRESHOLD is the nLockTime value below which a lock time is
	// interpreted as a block height rather than a unix timestamp.
	LOCKTIME_THRESHOLD = 500_000_000
)

// Transaction versions. The version selects the single output kind carried
// in the payload section of vout and whether the transaction pays a fee.
const (
	VERSION_COINBASE_TRANSFER int32 = 1944
	VERSION_COIN_TRANSFER     int32 = 1945
	VERSION_ROLE_CHANGE       int32 = 1946
	VERSION_POLICY_CHANGE     int32 = 1947
	VERSION_ROLE_CHANGE_FEE   int32 = 1948
	VERSION_POLICY_CHANGE_FEE int32 = 1949
	VERSION_ROLE_CREATE       int32 = 1950
	VERSION_ROLE_CREATE_FEE   int32 = 1951
	VERSION_COIN_CREATION     int32 = 1952
	VERSION_COIN_CREATION_FEE int32 = 1953
)

// Sequence field semantics (BIP 68 layout).
const (
	SEQUENCE_FINAL                 uint32 = 0xffffffff
	SEQUENCE_LOCKTIME_DISABLE_FLAG uint32 = 1 << 31
	SEQUENCE_LOCKTIME_TYPE_FLAG    uint32 = 1 << 22
	SEQUENCE_LOCKTIME_MASK         uint32 = 0x0000ffff
	SEQUENCE_LOCKTIME_GRANULARITY         = 9
)

// Amount is a monetary value in base units. The same 64-bit storage slot
// alternatively carries a role set or a policy record; see word.go.
type Amount int64

// MoneyRange reports whether v lies in the valid monetary range.
func MoneyRange(v Amount) bool {
	return v >= 0 && v <= MAX_MONEY
}

// IsKnownVersion reports whether v is one of the defined transaction
// versions.
func IsKnownVersion(v int32) bool {
	return v >= VERSION_COINBASE_TRANSFER && v <= VERSION_COIN_CREATION_FEE
}

// HasChangeOutput reports whether version carries a change output at
// vout[1] (coin transfers and every fee-paying management version).
func HasChangeOutput(version int32) bool {
	switch version {
	case VERSION_COIN_TRANSFER,
		VERSION_ROLE_CHANGE_FEE,
		VERSION_POLICY_CHANGE_FEE,
		VERSION_ROLE_CREATE_FEE,
		VERSION_COIN_CREATION_FEE:
		return true
	}
	return false
}

// IsFeeBearing reports whether version participates in fee accounting.
func IsFeeBearing(version int32) bool {
	return version == VERSION_COINBASE_TRANSFER || HasChangeOutput(version)
}

// PayloadKind returns the output kind required of payload outputs for the
// given version.
func PayloadKind(version int32) (OutputKind, bool) {
	switch version {
	case VERSION_COIN_TRANSFER, VERSION_COINBASE_TRANSFER,
		VERSION_COIN_CREATION, VERSION_COIN_CREATION_FEE:
		return OUT_COIN, true
	case VERSION_ROLE_CHANGE, VERSION_ROLE_CHANGE_FEE,
		VERSION_ROLE_CREATE, VERSION_ROLE_CREATE_FEE:
		return OUT_ROLE, true
	case VERSION_POLICY_CHANGE, VERSION_POLICY_CHANGE_FEE:
		return OUT_POLICY, true
	}
	return OUT_UNINITIALIZED, false
}

// OutputKind tags the payload interpretation of a transaction output. The
// tag is not serialized; it is reconstructed from (version, index) during
// deserialization.
type OutputKind uint8

const (
	OUT_UNINITIALIZED OutputKind = iota
	OUT_COIN
	OUT_ROLE
	OUT_POLICY
)

func (k OutputKind) String() string {
	switch k {
	case OUT_COIN:
		return "coin"
	case OUT_ROLE:
		return "role"
	case OUT_POLICY:
		return "policy"
	default:
		return "uninitialized"
	}
}

// OutPoint locates a transaction output by transaction hash and index.
type OutPoint struct {
	Hash  Hash
	Index uint32
}

// nullOutPointIndex marks the prevout of a coinbase input.
const nullOutPointIndex = ^uint32(0)

// NullOutPoint returns the coinbase prevout sentinel.
func NullOutPoint() OutPoint {
	return OutPoint{Index: nullOutPointIndex}
}

// IsNull reports whether o is the coinbase prevout sentinel.
func (o OutPoint) IsNull() bool {
	return o.Hash == (Hash{}) && o.Index == nullOutPointIndex
}

// TxIn is a transaction input spending a previous output.
type TxIn struct {
	PrevOut   OutPoint
	ScriptSig []byte
	Sequence  uint32

	// Witness is only serialized through the extended transaction form.
	Witness [][]byte
}

// TxOut is a tagged transaction output. The 64-bit word and the script are
// on the wire; the kind is assigned at deserialization from the parent
// transaction's version and the output's index.
type TxOut struct {
	kind     OutputKind
	word     uint64
	PkScript []byte
}

// NewCoinTxOut builds a coin-kind output carrying value.
func NewCoinTxOut(value Amount, pkScript []byte) TxOut {
	return TxOut{kind: OUT_COIN, word: uint64(value), PkScript: pkScript}
}

// NewRoleTxOut builds a role-kind output carrying roles.
func NewRoleTxOut(roles RoleSet, pkScript []byte) TxOut {
	return TxOut{kind: OUT_ROLE, word: roles.word(), PkScript: pkScript}
}

// NewTxOutFromWord rebuilds an output from its stored kind and raw word,
// validating role and policy words the way deserialization does.
func NewTxOutFromWord(kind OutputKind, word uint64, pkScript []byte) (TxOut, error) {
	switch kind {
	case OUT_COIN:
	case OUT_ROLE:
		if _, err := RoleSetFromWord(word); err != nil {
			return TxOut{}, err
		}
	case OUT_POLICY:
		if _, err := PolicyRecordFromWord(word); err != nil {
			return TxOut{}, err
		}
	default:
		return TxOut{}, parseError("uninitialized output kind")
	}
	return TxOut{kind: kind, word: word, PkScript: pkScript}, nil
}

// NewPolicyTxOut builds a policy-kind output carrying rec.
func NewPolicyTxOut(rec PolicyRecord, pkScript []byte) TxOut {
	return TxOut{kind: OUT_POLICY, word: rec.word(), PkScript: pkScript}
}

// Kind returns the output's payload tag.
func (o TxOut) Kind() OutputKind { return o.kind }

// Word returns the raw 64-bit payload word.
func (o TxOut) Word() uint64 { return o.word }

// Value interprets the payload word as a signed amount. Only meaningful
// for coin-kind outputs.
func (o TxOut) Value() Amount { return Amount(o.word) }

// Roles interprets the payload word as a role set. Only meaningful for
// role-kind outputs; the word was validated when the output was built.
func (o TxOut) Roles() RoleSet { return roleSetFromWordUnchecked(o.word) }

// Policy interprets the payload word as a policy record. Only meaningful
// for policy-kind outputs.
func (o TxOut) Policy() PolicyRecord { return policyRecordFromWordUnchecked(o.word) }

// Tx is a transaction. It is immutable once constructed; the content hash
// is computed lazily and cached.
type Tx struct {
	Version  int32
	Vin      []TxIn
	Vout     []TxOut
	LockTime uint32

	hash        Hash
	hashCached  bool
	witnessHash Hash
	whashCached bool
}

// NewTx assembles a transaction from its parts.
func NewTx(version int32, vin []TxIn, vout []TxOut, lockTime uint32) *Tx {
	return &Tx{Version: version, Vin: vin, Vout: vout, LockTime: lockTime}
}

// IsCoinBase reports whether tx has the coinbase input shape: a single
// input with the null prevout.
func (tx *Tx) IsCoinBase() bool {
	return len(tx.Vin) == 1 && tx.Vin[0].PrevOut.IsNull()
}

// HasWitness reports whether any input carries a non-empty witness stack.
func (tx *Tx) HasWitness() bool {
	for i := range tx.Vin {
		if len(tx.Vin[i].Witness) != 0 {
			return true
		}
	}
	return false
}

// TxHash returns the transaction hash over the no-witness serialization.
func (tx *Tx) TxHash() Hash {
	if !tx.hashCached {
		tx.hash = DoubleSHA256(MarshalTxNoWitness(tx))
		tx.hashCached = true
	}
	return tx.hash
}

// WitnessHash returns the hash over the full serialization. It equals
// TxHash when no input carries a witness.
func (tx *Tx) WitnessHash() Hash {
	if !tx.HasWitness() {
		return tx.TxHash()
	}
	if !tx.whashCached {
		tx.witnessHash = DoubleSHA256(MarshalTx(tx))
		tx.whashCached = true
	}
	return tx.witnessHash
}

// ExtraInputOffset returns the index of the first payload input: past the
// credentials, and past the fee input for versions that pay one.
func (tx *Tx) ExtraInputOffset() int {
	if tx.Version == VERSION_COINBASE_TRANSFER {
		return 0
	}
	if HasChangeOutput(tx.Version) {
		return 2
	}
	return 1
}

// ExtraOutputOffset returns the index of the first payload output: past
// the role repeat, and past the change output for versions that carry one.
func (tx *Tx) ExtraOutputOffset() int {
	if tx.Version == VERSION_COINBASE_TRANSFER {
		return 0
	}
	if HasChangeOutput(tx.Version) {
		return 2
	}
	return 1
}

// ValueOut sums the coin-kind outputs, enforcing the monetary range on
// each output and on the running total.
func (tx *Tx) ValueOut() (Amount, error) {
	var total Amount
	for i := range tx.Vout {
		if tx.Vout[i].Kind() != OUT_COIN {
			continue
		}
		v := tx.Vout[i].Value()
		total += v
		if !MoneyRange(v) || !MoneyRange(total) {
			return 0, txRuleError(100, "bad-txns-txouttotal-toolarge",
				"output value sum out of range")
		}
	}
	return total, nil
}
