package consensus

import "testing"

func finalityTx(t *testing.T, lockTime uint32, sequences ...uint32) *Tx {
	t.Helper()
	vin := make([]TxIn, len(sequences))
	for i, seq := range sequences {
		vin[i] = TxIn{PrevOut: testOutPoint(t, byte(i+1), 0), Sequence: seq}
	}
	return NewTx(VERSION_COIN_TRANSFER, vin,
		[]TxOut{NewRoleTxOut(RoleSet{R: true}, testScript(t, testAddress(t, 0xa0)))},
		lockTime)
}

func TestIsFinalTx(t *testing.T) {
	t.Run("zero lock time", func(t *testing.T) {
		if !IsFinalTx(finalityTx(t, 0, 5), 100, 0) {
			t.Fatal("expected final")
		}
	})

	t.Run("height lock passed", func(t *testing.T) {
		if !IsFinalTx(finalityTx(t, 90, 5), 100, 0) {
			t.Fatal("expected final")
		}
	})

	t.Run("height lock pending", func(t *testing.T) {
		if IsFinalTx(finalityTx(t, 110, 5), 100, 0) {
			t.Fatal("expected non-final")
		}
	})

	t.Run("time lock passed", func(t *testing.T) {
		if !IsFinalTx(finalityTx(t, LOCKTIME_THRESHOLD+10, 5), 100, LOCKTIME_THRESHOLD+20) {
			t.Fatal("expected final")
		}
	})

	t.Run("time lock pending", func(t *testing.T) {
		if IsFinalTx(finalityTx(t, LOCKTIME_THRESHOLD+30, 5), 100, LOCKTIME_THRESHOLD+20) {
			t.Fatal("expected non-final")
		}
	})

	t.Run("final sequences override lock", func(t *testing.T) {
		if !IsFinalTx(finalityTx(t, 110, SEQUENCE_FINAL, SEQUENCE_FINAL), 100, 0) {
			t.Fatal("expected final")
		}
	})

	t.Run("one non-final sequence keeps the lock", func(t *testing.T) {
		if IsFinalTx(finalityTx(t, 110, SEQUENCE_FINAL, 5), 100, 0) {
			t.Fatal("expected non-final")
		}
	})
}

func TestCalculateSequenceLocks(t *testing.T) {
	medianTimeAt := func(height int32) int64 {
		return int64(height) * 600
	}

	t.Run("disabled", func(t *testing.T) {
		tx := finalityTx(t, 0, SEQUENCE_LOCKTIME_DISABLE_FLAG|25)
		lock := CalculateSequenceLocks(tx, []int32{10}, medianTimeAt)
		if lock.MinHeight != -1 || lock.MinTime != -1 {
			t.Fatalf("lock = %+v, want unconstrained", lock)
		}
	})

	t.Run("height based", func(t *testing.T) {
		tx := finalityTx(t, 0, 25)
		lock := CalculateSequenceLocks(tx, []int32{10}, medianTimeAt)
		if lock.MinHeight != 10+25-1 {
			t.Fatalf("MinHeight = %d, want %d", lock.MinHeight, 10+25-1)
		}
		if lock.MinTime != -1 {
			t.Fatalf("MinTime = %d, want -1", lock.MinTime)
		}
		if SequenceLockActive(lock, 34, 0) {
			t.Fatal("lock should not be satisfied at height 34")
		}
		if !SequenceLockActive(lock, 35, 0) {
			t.Fatal("lock should be satisfied at height 35")
		}
	})

	t.Run("time based", func(t *testing.T) {
		tx := finalityTx(t, 0, SEQUENCE_LOCKTIME_TYPE_FLAG|2)
		lock := CalculateSequenceLocks(tx, []int32{10}, medianTimeAt)
		wantTime := medianTimeAt(9) + (2 << SEQUENCE_LOCKTIME_GRANULARITY) - 1
		if lock.MinTime != wantTime {
			t.Fatalf("MinTime = %d, want %d", lock.MinTime, wantTime)
		}
		if lock.MinHeight != -1 {
			t.Fatalf("MinHeight = %d, want -1", lock.MinHeight)
		}
	})

	t.Run("max across inputs", func(t *testing.T) {
		tx := finalityTx(t, 0, 10, 40)
		lock := CalculateSequenceLocks(tx, []int32{100, 50}, medianTimeAt)
		if lock.MinHeight != 109 {
			t.Fatalf("MinHeight = %d, want 109", lock.MinHeight)
		}
	})
}
