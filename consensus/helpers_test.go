package consensus

import (
	"testing"

	"tessera.dev/node/addr"
)

// testAddress returns a deterministic address for the given tag.
func testAddress(t *testing.T, tag byte) addr.Address {
	t.Helper()
	var hash [addr.HashSize]byte
	for i := range hash {
		hash[i] = tag
	}
	return addr.NewAddress(hash)
}

// testScript returns the P2PKH script for a test address.
func testScript(t *testing.T, a addr.Address) []byte {
	t.Helper()
	script, err := addr.PayToAddrScript(a)
	if err != nil {
		t.Fatalf("PayToAddrScript: %v", err)
	}
	return script
}

// testOutPoint returns a deterministic outpoint for the given tag.
func testOutPoint(t *testing.T, tag byte, index uint32) OutPoint {
	t.Helper()
	var h Hash
	for i := range h {
		h[i] = tag
	}
	return OutPoint{Hash: h, Index: index}
}

// mustParseRoles parses a canonical role string.
func mustParseRoles(t *testing.T, s string) RoleSet {
	t.Helper()
	r, err := ParseRoleSet(s)
	if err != nil {
		t.Fatalf("ParseRoleSet(%q): %v", s, err)
	}
	return r
}

// roleCoin places a role output for a into the view and returns its
// outpoint.
func roleCoin(t *testing.T, view *UtxoView, tag byte, a addr.Address, roles RoleSet) OutPoint {
	t.Helper()
	op := testOutPoint(t, tag, 0)
	view.AddCoin(op, Coin{
		Out:    NewRoleTxOut(roles, testScript(t, a)),
		Height: 1,
	})
	return op
}

// valueCoin places a coin output for a into the view and returns its
// outpoint.
func valueCoin(t *testing.T, view *UtxoView, tag byte, a addr.Address, value Amount, height int32, coinbase bool) OutPoint {
	t.Helper()
	op := testOutPoint(t, tag, 0)
	view.AddCoin(op, Coin{
		Out:        NewCoinTxOut(value, testScript(t, a)),
		Height:     height,
		IsCoinBase: coinbase,
	})
	return op
}

// spendInput builds an input spending op.
func spendInput(op OutPoint) TxIn {
	return TxIn{PrevOut: op, Sequence: SEQUENCE_FINAL}
}

// wantReject asserts that err is a rule error with the given reject code.
func wantReject(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected reject %q, transaction accepted", code)
	}
	if got := RejectCode(err); got != code {
		t.Fatalf("expected reject %q, got %q (%v)", code, got, err)
	}
}
