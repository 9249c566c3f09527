package consensus

// CheckTransaction applies the context-free validity rules: the empty
// vin/vout and size gates, then the per-version output-shape and
// money-range checks, then the duplicate-input and coinbase/null-prevout
// gates. The first failing check determines the reject code. pol supplies the active coin-creation limit; nil means the
// default policy.
func CheckTransaction(tx *Tx, pol *ManagementPolicy, checkDuplicateInputs bool) error {
	if len(tx.Vin) == 0 {
		return txRuleError(10, "bad-txns-vin-empty", "")
	}
	if len(tx.Vout) == 0 {
		return txRuleError(10, "bad-txns-vout-empty", "")
	}
	// Size limit against the no-witness serialization; witness bytes are
	// not counted here as they have not been checked for malleability.
	if len(MarshalTxNoWitness(tx))*WITNESS_SCALE_FACTOR > MAX_BLOCK_WEIGHT {
		return txRuleError(100, "bad-txns-oversize", "")
	}

	switch tx.Version {
	case VERSION_COINBASE_TRANSFER:
		if err := checkCoinOutputs(tx.Vout, 0, MAX_MONEY); err != nil {
			return err
		}

	case VERSION_COIN_TRANSFER:
		// The first vout is the sender's "role repeat".
		if tx.Vout[0].Kind() != OUT_ROLE {
			return txRuleError(100, "bad-txns-vout-wrong-type", "vout[0] is not a role repeat")
		}
		if err := checkCoinOutputs(tx.Vout, 1, MAX_MONEY); err != nil {
			return err
		}

	case VERSION_COIN_CREATION:
		if tx.Vout[0].Kind() != OUT_ROLE {
			return txRuleError(100, "bad-txns-vout-wrong-type", "vout[0] is not a role repeat")
		}
		limit := Amount(MAX_MONEY)
		if pol == nil {
			def := DefaultManagementPolicy()
			pol = &def
		}
		if pol.CoinCreationLimit < limit {
			limit = pol.CoinCreationLimit
		}
		if err := checkCoinOutputs(tx.Vout, 1, limit); err != nil {
			return err
		}

	case VERSION_POLICY_CHANGE, VERSION_POLICY_CHANGE_FEE,
		VERSION_ROLE_CHANGE, VERSION_ROLE_CHANGE_FEE,
		VERSION_ROLE_CREATE, VERSION_ROLE_CREATE_FEE,
		VERSION_COIN_CREATION_FEE:
		// Payload shape for these versions is enforced by the
		// context-aware pass.

	default:
		return txRuleError(100, "bad-txns-version", "")
	}

	// Duplicate-input detection is slow, so block-level callers skip it.
	if checkDuplicateInputs {
		seen := make(map[OutPoint]struct{}, len(tx.Vin))
		for i := range tx.Vin {
			if _, dup := seen[tx.Vin[i].PrevOut]; dup {
				return txRuleError(100, "bad-txns-inputs-duplicate", "")
			}
			seen[tx.Vin[i].PrevOut] = struct{}{}
		}
	}

	if tx.IsCoinBase() {
		if len(tx.Vin[0].ScriptSig) < 2 || len(tx.Vin[0].ScriptSig) > 100 {
			return txRuleError(100, "bad-cb-length", "")
		}
	} else {
		for i := range tx.Vin {
			if tx.Vin[i].PrevOut.IsNull() {
				return txRuleError(10, "bad-txns-prevout-null", "")
			}
		}
	}

	return nil
}

// checkCoinOutputs validates every output of vout from start onward as a
// coin output with a value in the monetary range, and bounds the running
// total by totalLimit.
func checkCoinOutputs(vout []TxOut, start int, totalLimit Amount) error {
	var total Amount
	for i := start; i < len(vout); i++ {
		if vout[i].Kind() != OUT_COIN {
			return txRuleError(100, "bad-txns-vout-wrong-type", "")
		}
		v := vout[i].Value()
		if v < 0 {
			return txRuleError(100, "bad-txns-vout-negative", "")
		}
		if v > MAX_MONEY {
			return txRuleError(100, "bad-txns-vout-toolarge", "")
		}
		total += v
		if !MoneyRange(total) || total > totalLimit {
			return txRuleError(100, "bad-txns-txouttotal-toolarge", "")
		}
	}
	return nil
}
