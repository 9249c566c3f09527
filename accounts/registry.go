package accounts

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"tessera.dev/node/addr"
)

// Registry instances are process-wide singletons keyed by backing file
// path; Open returns the existing instance until it is Closed.
var (
	registriesMu sync.Mutex
	registries   = make(map[string]*Registry)
)

// Registry is the managed-account store: address to account record,
// rewritten to disk as a whole on every mutation. Mutations must be
// serialized by the owning caller; reads may interleave.
type Registry struct {
	mu       sync.RWMutex
	path     string
	fileLock *flock.Flock
	accounts map[addr.Address]*Account
	root     addr.Address
}

// Open returns the registry backed by path, loading it from disk on first
// open. A missing file yields an empty registry.
func Open(path string) (*Registry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("accounts: resolve %q: %w", path, err)
	}

	registriesMu.Lock()
	defer registriesMu.Unlock()
	if r, ok := registries[abs]; ok {
		return r, nil
	}

	r := &Registry{
		path:     abs,
		fileLock: flock.New(abs + ".lock"),
		accounts: make(map[addr.Address]*Account),
	}
	if _, err := os.Stat(abs); err == nil {
		if err := r.loadFromDisk(); err != nil {
			return nil, err
		}
		log.Infof("Loaded %d account(s) from %s", len(r.accounts), abs)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accounts: stat %q: %w", abs, err)
	} else {
		log.Debugf("No account file at %s, starting empty", abs)
	}

	registries[abs] = r
	return r, nil
}

// Close releases the singleton slot for the registry's path. A later Open
// reloads from disk.
func (r *Registry) Close() error {
	registriesMu.Lock()
	defer registriesMu.Unlock()
	delete(registries, r.path)
	return nil
}

// Path returns the backing file path.
func (r *Registry) Path() string { return r.path }

// Add inserts a new account. An existing address is rejected. An account
// with the invalid parent sentinel becomes the root; otherwise the
// address is appended to its parent's children, and a missing parent is
// rejected so every stored parent link resolves.
func (r *Registry) Add(address addr.Address, account Account) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(address, account)
}

func (r *Registry) addLocked(address addr.Address, account Account) bool {
	if _, exists := r.accounts[address]; exists {
		log.Warnf("Add %v: account already exists", address)
		return false
	}

	if !account.Parent.IsValid() {
		log.Debugf("Add %v: no parent, designating root", address)
		r.root = address
	} else {
		parent, ok := r.accounts[account.Parent]
		if !ok {
			log.Errorf("Add %v: parent %v not in registry", address, account.Parent)
			return false
		}
		parent.AddChild(address)
	}

	acct := account.clone()
	r.accounts[address] = &acct
	return r.saveLocked()
}

// Update overwrites the roles of an existing account, delegating to Add
// for unknown addresses. When the stored roles were empty and the new
// account supplies a valid parent, the address is re-linked under that
// parent first.
func (r *Registry) Update(address addr.Address, account Account) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.accounts[address]
	if !exists {
		return r.addLocked(address, account)
	}

	if stored.Roles.Empty() && account.Parent.IsValid() {
		newParent, ok := r.accounts[account.Parent]
		if !ok {
			log.Errorf("Update %v: parent %v not in registry", address, account.Parent)
			return false
		}
		log.Debugf("Reattaching %v to parent %v", address, account.Parent)
		if old, ok := r.accounts[stored.Parent]; ok {
			old.RemoveChild(address)
		}
		newParent.AddChild(address)
		stored.Parent = account.Parent
	}

	stored.Roles = account.Roles
	return r.saveLocked()
}

// Delete removes the account by key. Parent and child links of other
// accounts are left untouched.
func (r *Registry) Delete(address addr.Address) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[address]; !exists {
		return false
	}
	delete(r.accounts, address)
	return r.saveLocked()
}

// Get returns a copy of the account at address.
func (r *Registry) Get(address addr.Address) (Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acct, ok := r.accounts[address]
	if !ok {
		return Account{}, false
	}
	return acct.clone(), true
}

// Exists reports whether address has an account.
func (r *Registry) Exists(address addr.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.accounts[address]
	return ok
}

// Size returns the number of accounts.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}

// RootAddress returns the address of the root account, or the invalid
// sentinel when the registry is empty.
func (r *Registry) RootAddress() addr.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.root
}

// Children returns a copy of the children list of address.
func (r *Registry) Children(address addr.Address) []addr.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acct, ok := r.accounts[address]
	if !ok || len(acct.Children) == 0 {
		return nil
	}
	return append([]addr.Address(nil), acct.Children...)
}

// Reset drops every account and persists the empty registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts = make(map[addr.Address]*Account)
	r.root = addr.Address{}
	r.saveLocked()
}

// String renders the registry account list for logging.
func (r *Registry) String() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sb strings.Builder
	sb.WriteString("account list:\n")
	for _, address := range r.sortedAddressesLocked() {
		fmt.Fprintf(&sb, "%s | %s\n", addr.Encode(address), r.accounts[address].String())
	}
	sb.WriteString("account list end\n")
	return sb.String()
}

func (r *Registry) sortedAddressesLocked() []addr.Address {
	out := make([]addr.Address, 0, len(r.accounts))
	for address := range r.accounts {
		out = append(out, address)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// saveLocked rewrites the whole registry file under an exclusive file
// lock. Storage failures are logged and surface as false.
func (r *Registry) saveLocked() bool {
	if err := r.fileLock.Lock(); err != nil {
		log.Errorf("Lock %s: %v", r.path, err)
		return false
	}
	defer func() {
		if err := r.fileLock.Unlock(); err != nil {
			log.Errorf("Unlock %s: %v", r.path, err)
		}
	}()

	var sb strings.Builder
	for _, address := range r.sortedAddressesLocked() {
		sb.WriteString(addr.Encode(address))
		sb.WriteByte('\n')
		sb.WriteString(r.accounts[address].String())
		sb.WriteByte('\n')
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(sb.String()), 0o600); err != nil {
		log.Errorf("Write %s: %v", tmp, err)
		return false
	}
	if err := os.Rename(tmp, r.path); err != nil {
		log.Errorf("Rename %s: %v", tmp, err)
		return false
	}
	return true
}

// loadFromDisk replaces the in-memory state with the file contents. The
// account whose parent is the invalid sentinel becomes the root.
func (r *Registry) loadFromDisk() error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("accounts: open %q: %w", r.path, err)
	}
	defer f.Close()

	accounts := make(map[addr.Address]*Account)
	var root addr.Address

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		encoded := strings.TrimSpace(scanner.Text())
		if encoded == "" {
			continue
		}
		address, err := addr.Decode(encoded)
		if err != nil || !address.IsValid() {
			return fmt.Errorf("accounts: %q: bad address line %q", r.path, encoded)
		}
		if !scanner.Scan() {
			return fmt.Errorf("accounts: %q: missing account line for %s", r.path, encoded)
		}
		acct, err := parseAccountLine(strings.TrimSpace(scanner.Text()))
		if err != nil {
			return fmt.Errorf("accounts: %q: %w", r.path, err)
		}
		accounts[address] = &acct
		if !acct.Parent.IsValid() {
			root = address
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("accounts: read %q: %w", r.path, err)
	}

	r.accounts = accounts
	r.root = root
	return nil
}
