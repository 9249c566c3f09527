package consensus

// IsFinalTx reports whether tx is final at the given block height and
// time: its lock time has passed, or every input opted out with
// SEQUENCE_FINAL.
func IsFinalTx(tx *Tx, blockHeight int32, blockTime int64) bool {
	if tx.LockTime == 0 {
		return true
	}
	threshold := int64(blockHeight)
	if int64(tx.LockTime) >= LOCKTIME_THRESHOLD {
		threshold = blockTime
	}
	if int64(tx.LockTime) < threshold {
		return true
	}
	for i := range tx.Vin {
		if tx.Vin[i].Sequence != SEQUENCE_FINAL {
			return false
		}
	}
	return true
}

// SequenceLock is the converted relative lock of a transaction: the last
// height and time at which the transaction is still invalid. A value of
// -1 means no constraint of that kind.
type SequenceLock struct {
	MinHeight int32
	MinTime   int64
}

// CalculateSequenceLocks converts the BIP 68 sequence fields of tx into a
// SequenceLock. prevHeights carries the creation height of each input's
// prevout; medianTimeAt returns the median past time of the block at a
// height and is consulted only for time-based locks.
func CalculateSequenceLocks(tx *Tx, prevHeights []int32, medianTimeAt func(height int32) int64) SequenceLock {
	lock := SequenceLock{MinHeight: -1, MinTime: -1}

	for i := range tx.Vin {
		seq := tx.Vin[i].Sequence
		if seq&SEQUENCE_LOCKTIME_DISABLE_FLAG != 0 {
			continue
		}
		coinHeight := prevHeights[i]

		if seq&SEQUENCE_LOCKTIME_TYPE_FLAG != 0 {
			prior := coinHeight - 1
			if prior < 0 {
				prior = 0
			}
			coinTime := medianTimeAt(prior)
			// Shift the masked value up by the granularity and subtract
			// one to convert to last-invalid-time semantics.
			lockTime := coinTime + int64(seq&SEQUENCE_LOCKTIME_MASK)<<SEQUENCE_LOCKTIME_GRANULARITY - 1
			if lockTime > lock.MinTime {
				lock.MinTime = lockTime
			}
		} else {
			lockHeight := coinHeight + int32(seq&SEQUENCE_LOCKTIME_MASK) - 1
			if lockHeight > lock.MinHeight {
				lock.MinHeight = lockHeight
			}
		}
	}
	return lock
}

// SequenceLockActive reports whether lock permits inclusion in a block at
// blockHeight whose parent has the given median past time.
func SequenceLockActive(lock SequenceLock, blockHeight int32, medianTimePast int64) bool {
	return lock.MinHeight < blockHeight && lock.MinTime < medianTimePast
}
