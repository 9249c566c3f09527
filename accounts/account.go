// Package accounts maintains the managed-account hierarchy: a persisted
// tree of addresses carrying role metadata, rooted at the unique account
// with no parent, plus its graph export.
package accounts

import (
	"fmt"
	"strings"

	"tessera.dev/node/addr"
	"tessera.dev/node/consensus"
)

const (
	fieldSeparator = "|"
	childSeparator = ","
)

// Account is one managed-account record: the address's current roles, its
// parent in the authority tree (the invalid sentinel for the root), and
// its children in insertion order.
type Account struct {
	Roles    consensus.RoleSet
	Parent   addr.Address
	Children []addr.Address
}

// NewAccount returns an account with the given roles and no parent.
func NewAccount(roles consensus.RoleSet) Account {
	return Account{Roles: roles}
}

// NewChildAccount returns an account with the given roles under parent.
func NewChildAccount(roles consensus.RoleSet, parent addr.Address) Account {
	return Account{Roles: roles, Parent: parent}
}

// AddChild appends child to the children list, keeping it unique. Reports
// whether the list changed.
func (a *Account) AddChild(child addr.Address) bool {
	if a.HasChild(child) {
		return false
	}
	a.Children = append(a.Children, child)
	return true
}

// RemoveChild removes child from the children list. Reports whether the
// list changed.
func (a *Account) RemoveChild(child addr.Address) bool {
	for i := range a.Children {
		if a.Children[i] == child {
			a.Children = append(a.Children[:i], a.Children[i+1:]...)
			return true
		}
	}
	return false
}

// HasChild reports whether child is in the children list.
func (a *Account) HasChild(child addr.Address) bool {
	for i := range a.Children {
		if a.Children[i] == child {
			return true
		}
	}
	return false
}

// clone returns a deep copy of the account.
func (a *Account) clone() Account {
	out := Account{Roles: a.Roles, Parent: a.Parent}
	if len(a.Children) != 0 {
		out.Children = append([]addr.Address(nil), a.Children...)
	}
	return out
}

// String renders the account's persisted line form:
// role string, parent address (empty for the root), and the
// comma-separated children, joined by the field separator.
func (a Account) String() string {
	children := make([]string, len(a.Children))
	for i, c := range a.Children {
		children[i] = addr.Encode(c)
	}
	return strings.Join([]string{
		a.Roles.String(),
		addr.Encode(a.Parent),
		strings.Join(children, childSeparator),
	}, fieldSeparator)
}

// parseAccountLine decodes the line form produced by String.
func parseAccountLine(line string) (Account, error) {
	fields := strings.Split(line, fieldSeparator)
	if len(fields) != 3 {
		return Account{}, fmt.Errorf("account line %q: want 3 fields, got %d", line, len(fields))
	}

	roles, err := consensus.ParseRoleSet(fields[0])
	if err != nil {
		return Account{}, fmt.Errorf("account line %q: %w", line, err)
	}
	parent, err := addr.Decode(fields[1])
	if err != nil {
		return Account{}, fmt.Errorf("account line %q: %w", line, err)
	}

	acct := Account{Roles: roles, Parent: parent}
	if fields[2] != "" {
		for _, enc := range strings.Split(fields[2], childSeparator) {
			child, err := addr.Decode(enc)
			if err != nil {
				return Account{}, fmt.Errorf("account line %q: %w", line, err)
			}
			if !child.IsValid() {
				return Account{}, fmt.Errorf("account line %q: empty child address", line)
			}
			acct.Children = append(acct.Children, child)
		}
	}
	return acct, nil
}
