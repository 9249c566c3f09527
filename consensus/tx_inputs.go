package consensus

import (
	"fmt"

	"tessera.dev/node/addr"
)

// CheckTxInputs applies the context-aware validity rules against the
// resolved prevouts in view: credentials and role-repeat presence,
// authorization, the per-version addressing rules, and fee accounting.
// On success it returns the transaction fee (zero for the free
// management versions).
//
// The checks run in a fixed order and the first failure determines the
// reject code; callers depend on that for deterministic peer responses.
func CheckTxInputs(tx *Tx, view InputsView, spendHeight int32) (Amount, error) {
	if !view.HaveInputs(tx) {
		return 0, txRuleError(100, "bad-txns-inputs-missingorspent",
			fmt.Sprintf("%v: inputs missing or spent", tx.TxHash()))
	}

	if tx.Version == VERSION_COINBASE_TRANSFER {
		// A miner moving a coinbase reward: every input must itself be a
		// coinbase coin output.
		for i := range tx.Vin {
			prev := mustAccessCoin(view, tx.Vin[i].PrevOut)
			if prev.Out.Kind() != OUT_COIN {
				return 0, AssertError(fmt.Sprintf(
					"coinbase transfer input %d resolves to a %v output", i, prev.Out.Kind()))
			}
			if !prev.IsCoinBase {
				return 0, txRuleError(100, "bad-txns-coinbase-expected", "")
			}
		}
	} else {
		if err := checkManagedInputs(tx, view); err != nil {
			return 0, err
		}
	}

	return checkTxFee(tx, view, spendHeight)
}

// checkManagedInputs enforces the credential, authorization and
// addressing rules shared by every non-coinbase-transfer version.
func checkManagedInputs(tx *Tx, view InputsView) error {
	// The first vin is the author's credentials: a role output proving
	// the authority the transaction claims.
	credentials := mustAccessCoin(view, tx.Vin[0].PrevOut)
	if credentials.Out.Kind() != OUT_ROLE {
		return txRuleError(100, "bad-txns-missing-credentials", "")
	}

	// The first vout repeats the author's roles on-chain.
	if tx.Vout[0].Kind() != OUT_ROLE {
		return txRuleError(100, "bad-txns-missing-rolerepeat", "")
	}

	credRoles := credentials.Out.Roles()
	if !isAuthorized(tx, credRoles, view) {
		return txRuleError(100, "bad-txns-not-authorized", "")
	}

	credAddr := addr.ExtractAddress(credentials.Out.PkScript)
	if !credAddr.IsValid() {
		return AssertError("credentials output has no extractable address")
	}

	// Ensure that privileges cannot be exercised from another address:
	// all non-payload vins belong to the credentials address, and role
	// changes pair each payload vin with the vout rotating that same
	// (different) address.
	switch tx.Version {
	case VERSION_ROLE_CHANGE_FEE, VERSION_ROLE_CHANGE:
		if tx.Version == VERSION_ROLE_CHANGE_FEE {
			if len(tx.Vin) < 2 {
				return txRuleError(100, "bad-txns-io-mismatch", "missing fee input")
			}
			feeCoin := mustAccessCoin(view, tx.Vin[1].PrevOut)
			if feeCoin.Out.Kind() != OUT_COIN {
				return txRuleError(100, "bad-txns-coin-transfer-expected", "")
			}
			if addr.ExtractAddress(feeCoin.Out.PkScript) != credAddr {
				return txRuleError(100, "bad-txns-address-mismatch", "")
			}
		}
		if len(tx.Vin) != len(tx.Vout) {
			return txRuleError(100, "bad-txns-io-mismatch", "")
		}
		for i := tx.ExtraInputOffset(); i < len(tx.Vin); i++ {
			prev := mustAccessCoin(view, tx.Vin[i].PrevOut)
			if prev.Out.Kind() != OUT_ROLE || tx.Vout[i].Kind() != OUT_ROLE {
				return txRuleError(100, "bad-txns-role-change-expected", "")
			}
			prevAddr := addr.ExtractAddress(prev.Out.PkScript)
			if prevAddr == credAddr {
				return txRuleError(100, "bad-txns-address-reuse", "")
			}
			if addr.ExtractAddress(tx.Vout[i].PkScript) != prevAddr {
				return txRuleError(100, "bad-txns-io-mismatch", "")
			}
		}

	default:
		for i := 1; i < len(tx.Vin); i++ {
			prev := mustAccessCoin(view, tx.Vin[i].PrevOut)
			if prev.Out.Kind() != OUT_COIN {
				return txRuleError(100, "bad-txns-coin-transfer-expected", "")
			}
			if addr.ExtractAddress(prev.Out.PkScript) != credAddr {
				return txRuleError(100, "bad-txns-address-mismatch", "")
			}
		}
	}

	// The role repeat claims the credentials address.
	if addr.ExtractAddress(tx.Vout[0].PkScript) != credAddr {
		return txRuleError(100, "bad-txns-address-mismatch", "")
	}

	// The change output returns to the credentials address.
	if HasChangeOutput(tx.Version) {
		if len(tx.Vout) < 2 {
			return txRuleError(100, "bad-txns-io-mismatch", "missing change output")
		}
		if addr.ExtractAddress(tx.Vout[1].PkScript) != credAddr {
			return txRuleError(100, "bad-txns-address-mismatch", "")
		}
	}

	// Payload outputs carry the version's single output kind.
	payloadKind, ok := PayloadKind(tx.Version)
	if !ok {
		return txRuleError(100, "bad-txns-invalid-txversion", "")
	}
	for i := tx.ExtraOutputOffset(); i < len(tx.Vout); i++ {
		if tx.Vout[i].Kind() != payloadKind {
			return txRuleError(100, "bad-txns-invalid-vouttype", "")
		}
	}

	// The role repeat's value must restate the author's roles. Role
	// changes alone may instead drop to the empty set, letting a user
	// shed privileges to attach to a new parent.
	repeatOK := tx.Vout[0].Roles() == credRoles
	if tx.Version == VERSION_ROLE_CHANGE || tx.Version == VERSION_ROLE_CHANGE_FEE {
		repeatOK = repeatOK || tx.Vout[0].Roles().Empty()
	}
	if !repeatOK {
		return txRuleError(100, "bad-txns-invalid-rolerepeat", "")
	}

	// Payload outputs never reuse the credentials address.
	for i := tx.ExtraOutputOffset(); i < len(tx.Vout); i++ {
		if addr.ExtractAddress(tx.Vout[i].PkScript) == credAddr {
			return txRuleError(100, "bad-txns-address-reuse", "")
		}
	}

	return nil
}

// checkTxFee performs fee accounting. Fee-bearing versions sum their
// coin-kind inputs, enforcing coinbase maturity and the monetary range,
// and must cover the value out; the free management versions pay nothing.
func checkTxFee(tx *Tx, view InputsView, spendHeight int32) (Amount, error) {
	switch tx.Version {
	case VERSION_ROLE_CHANGE, VERSION_POLICY_CHANGE,
		VERSION_COIN_CREATION, VERSION_ROLE_CREATE:
		return 0, nil

	case VERSION_COINBASE_TRANSFER, VERSION_COIN_TRANSFER,
		VERSION_ROLE_CHANGE_FEE, VERSION_POLICY_CHANGE_FEE,
		VERSION_COIN_CREATION_FEE, VERSION_ROLE_CREATE_FEE:
		var valueIn Amount
		for i := range tx.Vin {
			prev := mustAccessCoin(view, tx.Vin[i].PrevOut)
			if prev.Out.Kind() != OUT_COIN {
				// Credential and role inputs carry no value.
				continue
			}

			if prev.IsCoinBase && spendHeight-prev.Height < COINBASE_MATURITY {
				return 0, txRuleError(100, "bad-txns-premature-spend-of-coinbase",
					fmt.Sprintf("tried to spend coinbase at depth %d", spendHeight-prev.Height))
			}

			valueIn += prev.Out.Value()
			if !MoneyRange(prev.Out.Value()) || !MoneyRange(valueIn) {
				return 0, txRuleError(100, "bad-txns-inputvalues-outofrange", "")
			}
		}

		valueOut, err := tx.ValueOut()
		if err != nil {
			return 0, err
		}
		if valueIn < valueOut {
			return 0, txRuleError(100, "bad-txns-in-belowout",
				fmt.Sprintf("value in (%d) < value out (%d)", valueIn, valueOut))
		}

		fee := valueIn - valueOut
		if !MoneyRange(fee) {
			return 0, txRuleError(100, "bad-txns-fee-outofrange", "")
		}
		return fee, nil

	default:
		return 0, txRuleError(100, "bad-txns-invalid-txversion", "")
	}
}

// mustAccessCoin resolves a prevout HaveInputs already vouched for.
func mustAccessCoin(view InputsView, op OutPoint) Coin {
	c, ok := view.AccessCoin(op)
	if !ok {
		panic(AssertError(fmt.Sprintf("prevout %v:%d vanished from the inputs view", op.Hash, op.Index)))
	}
	return c
}
