package store

import (
	"path/filepath"
	"testing"

	"tessera.dev/node/addr"
	"tessera.dev/node/consensus"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "db", "utxo.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func testAddress(t *testing.T, tag byte) addr.Address {
	t.Helper()
	var hash [addr.HashSize]byte
	for i := range hash {
		hash[i] = tag
	}
	return addr.NewAddress(hash)
}

func testScript(t *testing.T, a addr.Address) []byte {
	t.Helper()
	script, err := addr.PayToAddrScript(a)
	if err != nil {
		t.Fatalf("PayToAddrScript: %v", err)
	}
	return script
}

func testOutPoint(tag byte, index uint32) consensus.OutPoint {
	var h consensus.Hash
	for i := range h {
		h[i] = tag
	}
	return consensus.OutPoint{Hash: h, Index: index}
}

func coinsEqual(a, b consensus.Coin) bool {
	return a.Out.Kind() == b.Out.Kind() &&
		a.Out.Word() == b.Out.Word() &&
		string(a.Out.PkScript) == string(b.Out.PkScript) &&
		a.Height == b.Height &&
		a.IsCoinBase == b.IsCoinBase
}

func TestCoinRoundTrip(t *testing.T) {
	d := openTestDB(t)
	a := testAddress(t, 0x11)

	coins := []consensus.Coin{
		{Out: consensus.NewCoinTxOut(42*consensus.COIN, testScript(t, a)), Height: 7, IsCoinBase: true},
		{Out: consensus.NewRoleTxOut(consensus.RoleSet{M: true, R: true}, testScript(t, a)), Height: 3},
		{Out: consensus.NewPolicyTxOut(consensus.PolicyRecord{Type: consensus.SET_MIN_TX_FEE, Param: 9}, testScript(t, a)), Height: 9},
	}
	for i, want := range coins {
		op := testOutPoint(byte(i+1), uint32(i))
		if err := d.PutCoin(op, want); err != nil {
			t.Fatalf("PutCoin: %v", err)
		}
		got, ok, err := d.FetchCoin(op)
		if err != nil || !ok {
			t.Fatalf("FetchCoin: ok=%v err=%v", ok, err)
		}
		if !coinsEqual(got, want) {
			t.Fatalf("coin %d mismatch: got %+v, want %+v", i, got, want)
		}
	}

	op := testOutPoint(1, 0)
	if err := d.SpendCoin(op); err != nil {
		t.Fatalf("SpendCoin: %v", err)
	}
	if _, ok, _ := d.FetchCoin(op); ok {
		t.Fatal("coin still present after SpendCoin")
	}
}

func TestRoleRoundTrip(t *testing.T) {
	d := openTestDB(t)
	a := testAddress(t, 0x22)
	want := consensus.RoleSet{C: true, R: true}

	if _, ok, _ := d.FetchRole(a); ok {
		t.Fatal("role present before PutRole")
	}
	if err := d.PutRole(a, want); err != nil {
		t.Fatalf("PutRole: %v", err)
	}
	got, ok, err := d.FetchRole(a)
	if err != nil || !ok {
		t.Fatalf("FetchRole: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("roles = %v, want %v", got, want)
	}
}

func TestSnapshot(t *testing.T) {
	d := openTestDB(t)
	a := testAddress(t, 0x33)
	op := testOutPoint(1, 0)
	coin := consensus.Coin{Out: consensus.NewCoinTxOut(5, testScript(t, a)), Height: 2}

	if err := d.PutCoin(op, coin); err != nil {
		t.Fatalf("PutCoin: %v", err)
	}
	if err := d.PutRole(a, consensus.RoleSet{R: true}); err != nil {
		t.Fatalf("PutRole: %v", err)
	}

	view, err := d.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	got, ok := view.AccessCoin(op)
	if !ok || !coinsEqual(got, coin) {
		t.Fatalf("snapshot coin: ok=%v got=%+v", ok, got)
	}
	roles, ok := view.FetchOldRole(a)
	if !ok || roles != (consensus.RoleSet{R: true}) {
		t.Fatalf("snapshot role: ok=%v roles=%v", ok, roles)
	}
}

func TestConnectTransaction(t *testing.T) {
	d := openTestDB(t)
	credAddr := testAddress(t, 0x44)
	targetAddr := testAddress(t, 0x55)

	credOut := testOutPoint(1, 0)
	targetOut := testOutPoint(2, 0)
	if err := d.PutCoin(credOut, consensus.Coin{
		Out:    consensus.NewRoleTxOut(consensus.RoleSet{M: true, R: true}, testScript(t, credAddr)),
		Height: 1,
	}); err != nil {
		t.Fatalf("PutCoin: %v", err)
	}
	if err := d.PutCoin(targetOut, consensus.Coin{
		Out:    consensus.NewRoleTxOut(consensus.RoleSet{R: true}, testScript(t, targetAddr)),
		Height: 1,
	}); err != nil {
		t.Fatalf("PutCoin: %v", err)
	}

	tx := consensus.NewTx(consensus.VERSION_ROLE_CHANGE,
		[]consensus.TxIn{
			{PrevOut: credOut, Sequence: consensus.SEQUENCE_FINAL},
			{PrevOut: targetOut, Sequence: consensus.SEQUENCE_FINAL},
		},
		[]consensus.TxOut{
			consensus.NewRoleTxOut(consensus.RoleSet{M: true, R: true}, testScript(t, credAddr)),
			consensus.NewRoleTxOut(consensus.RoleSet{C: true, R: true}, testScript(t, targetAddr)),
		}, 0)

	view, err := d.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if _, err := consensus.CheckTxInputs(tx, view, 100); err != nil {
		t.Fatalf("CheckTxInputs: %v", err)
	}
	if err := d.ConnectTransaction(tx, 100); err != nil {
		t.Fatalf("ConnectTransaction: %v", err)
	}

	if _, ok, _ := d.FetchCoin(credOut); ok {
		t.Fatal("spent input still present")
	}
	txHash := tx.TxHash()
	created, ok, err := d.FetchCoin(consensus.OutPoint{Hash: txHash, Index: 1})
	if err != nil || !ok {
		t.Fatalf("created output missing: ok=%v err=%v", ok, err)
	}
	if created.Height != 100 || created.IsCoinBase {
		t.Fatalf("created coin metadata: %+v", created)
	}

	roles, ok, err := d.FetchRole(targetAddr)
	if err != nil || !ok {
		t.Fatalf("FetchRole: ok=%v err=%v", ok, err)
	}
	if roles != (consensus.RoleSet{C: true, R: true}) {
		t.Fatalf("target roles = %v", roles)
	}
}
