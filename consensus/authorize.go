package consensus

import "tessera.dev/node/addr"

// isValidRoleIn reports whether a role set may authorize a transaction:
// the account must be registered, not disabled, and hold at most one of
// the operational roles.
func isValidRoleIn(r RoleSet) bool {
	if !r.R || r.D {
		return false
	}
	return r.restrictedCount() <= 1
}

// isValidRoleOut reports whether a role set may be written to an output.
// The empty set is valid (a voluntary privilege drop); otherwise the
// account must be registered with at most one operational role.
func isValidRoleOut(r RoleSet) bool {
	if r.Empty() {
		return true
	}
	if !r.R {
		return false
	}
	return r.restrictedCount() <= 1
}

// isAuthorizedRCM reports whether inRole may effect the role delta:
// manager privileges grant or remove M, C, L and A; manager or account
// manager privileges grant or remove R; manager or law enforcement
// privileges flip D.
func isAuthorizedRCM(inRole, delta RoleSet) bool {
	if delta.M || delta.C || delta.L || delta.A {
		if !inRole.M {
			return false
		}
	}
	if delta.R {
		if !inRole.M && !inRole.A {
			return false
		}
	}
	if delta.D {
		if !inRole.M && !inRole.L {
			return false
		}
	}
	return true
}

// isAuthorized decides whether the credentials role set inRole authorizes
// tx given the prevouts in view.
func isAuthorized(tx *Tx, inRole RoleSet, view InputsView) bool {
	if !isValidRoleIn(inRole) {
		return false
	}

	// Managers can perform anything; the validity check above made sure
	// they are registered and not disabled.
	if inRole.M {
		return true
	}

	switch tx.Version {
	case VERSION_COINBASE_TRANSFER:
		return true

	case VERSION_COIN_TRANSFER:
		// The sender needs at least role R, already covered by
		// isValidRoleIn.
		return true

	case VERSION_ROLE_CHANGE, VERSION_ROLE_CHANGE_FEE:
		for i := tx.ExtraOutputOffset(); i < len(tx.Vout); i++ {
			newRole := tx.Vout[i].Roles()
			if !isValidRoleOut(newRole) {
				return false
			}
			if i >= len(tx.Vin) {
				return false
			}
			prev, ok := view.AccessCoin(tx.Vin[i].PrevOut)
			if !ok || prev.Out.Kind() != OUT_ROLE {
				return false
			}
			delta := newRole.Xor(prev.Out.Roles())
			log.Tracef("role change at vout[%d]: old=%v new=%v delta=%v",
				i, prev.Out.Roles(), newRole, delta)
			if !isAuthorizedRCM(inRole, delta) {
				return false
			}
		}
		return true

	case VERSION_ROLE_CREATE, VERSION_ROLE_CREATE_FEE:
		for i := tx.ExtraOutputOffset(); i < len(tx.Vout); i++ {
			newRole := tx.Vout[i].Roles()
			if !isValidRoleOut(newRole) {
				return false
			}
			target := addr.ExtractAddress(tx.Vout[i].PkScript)
			if old, exists := view.FetchOldRole(target); exists && !old.Empty() {
				log.Debugf("role create for %v rejected: account already exists", target)
				return false
			}
			if !isAuthorizedRCM(inRole, newRole) {
				return false
			}
		}
		return true

	case VERSION_POLICY_CHANGE, VERSION_POLICY_CHANGE_FEE:
		// Only a manager can change policy.
		return inRole.M

	case VERSION_COIN_CREATION, VERSION_COIN_CREATION_FEE:
		// Only a coin creator can create coin.
		return inRole.C
	}

	return false
}
