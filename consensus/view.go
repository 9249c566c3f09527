package consensus

import "tessera.dev/node/addr"

// Coin is an unspent output as seen by validation: the output itself plus
// the height and coinbase provenance of the transaction that created it.
type Coin struct {
	Out        TxOut
	Height     int32
	IsCoinBase bool
}

// InputsView resolves the previous outputs a transaction spends and the
// last role record published for an address. Implementations must be
// immutable snapshots for the duration of a validation call.
type InputsView interface {
	// HaveInputs reports whether every prevout of tx is resolvable.
	HaveInputs(tx *Tx) bool

	// AccessCoin returns the coin at op.
	AccessCoin(op OutPoint) (Coin, bool)

	// FetchOldRole returns the last role set recorded for a, if any.
	FetchOldRole(a addr.Address) (RoleSet, bool)
}

// UtxoView is a map-backed InputsView.
type UtxoView struct {
	entries map[OutPoint]Coin
	roles   map[addr.Address]RoleSet
}

// NewUtxoView returns an empty view.
func NewUtxoView() *UtxoView {
	return &UtxoView{
		entries: make(map[OutPoint]Coin),
		roles:   make(map[addr.Address]RoleSet),
	}
}

// AddCoin records a coin at op.
func (v *UtxoView) AddCoin(op OutPoint, c Coin) {
	v.entries[op] = c
	if c.Out.Kind() == OUT_ROLE {
		if a := addr.ExtractAddress(c.Out.PkScript); a.IsValid() {
			v.roles[a] = c.Out.Roles()
		}
	}
}

// SpendCoin removes the coin at op.
func (v *UtxoView) SpendCoin(op OutPoint) {
	delete(v.entries, op)
}

// SetRole records a role set for an address without a backing coin.
func (v *UtxoView) SetRole(a addr.Address, r RoleSet) {
	v.roles[a] = r
}

// Len returns the number of coins in the view.
func (v *UtxoView) Len() int { return len(v.entries) }

func (v *UtxoView) HaveInputs(tx *Tx) bool {
	for i := range tx.Vin {
		if _, ok := v.entries[tx.Vin[i].PrevOut]; !ok {
			return false
		}
	}
	return true
}

func (v *UtxoView) AccessCoin(op OutPoint) (Coin, bool) {
	c, ok := v.entries[op]
	return c, ok
}

func (v *UtxoView) FetchOldRole(a addr.Address) (RoleSet, bool) {
	r, ok := v.roles[a]
	return r, ok
}
