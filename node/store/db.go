// Package store persists the unspent-output set and the last role record
// published for each address, and produces the immutable snapshots the
// validation engine consumes.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"tessera.dev/node/addr"
	"tessera.dev/node/consensus"
)

var (
	bucketUtxo  = []byte("utxo_by_outpoint")
	bucketRoles = []byte("roles_by_address")
)

// DB is the bbolt-backed UTXO and role store.
type DB struct {
	path string
	db   *bolt.DB
}

// Open opens (creating as needed) the store at path.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("store: path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("store: create %q: %w", filepath.Dir(path), err)
	}

	bdb, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("store: open bbolt: %w", err)
	}

	d := &DB{path: path, db: bdb}
	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketUtxo, bucketRoles} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the store.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// PutCoin stores the coin at op.
func (d *DB) PutCoin(op consensus.OutPoint, c consensus.Coin) error {
	key := encodeOutpointKey(op)
	val := encodeCoinEntry(c)
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUtxo).Put(key, val)
	})
}

// FetchCoin returns the coin at op.
func (d *DB) FetchCoin(op consensus.OutPoint) (consensus.Coin, bool, error) {
	var out consensus.Coin
	var ok bool
	key := encodeOutpointKey(op)
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketUtxo).Get(key)
		if v == nil {
			return nil
		}
		c, err := decodeCoinEntry(v)
		if err != nil {
			return err
		}
		out = c
		ok = true
		return nil
	})
	return out, ok, err
}

// SpendCoin removes the coin at op.
func (d *DB) SpendCoin(op consensus.OutPoint) error {
	key := encodeOutpointKey(op)
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUtxo).Delete(key)
	})
}

// PutRole records the last published role set for a.
func (d *DB) PutRole(a addr.Address, roles consensus.RoleSet) error {
	key, err := encodeAddressKey(a)
	if err != nil {
		return err
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRoles).Put(key, encodeRoleEntry(roles))
	})
}

// FetchRole returns the last published role set for a.
func (d *DB) FetchRole(a addr.Address) (consensus.RoleSet, bool, error) {
	key, err := encodeAddressKey(a)
	if err != nil {
		return consensus.RoleSet{}, false, err
	}
	var out consensus.RoleSet
	var ok bool
	err = d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketRoles).Get(key)
		if v == nil {
			return nil
		}
		roles, err := decodeRoleEntry(v)
		if err != nil {
			return err
		}
		out = roles
		ok = true
		return nil
	})
	return out, ok, err
}

// Snapshot materializes the whole store into an immutable view for the
// validation engine.
func (d *DB) Snapshot() (*consensus.UtxoView, error) {
	view := consensus.NewUtxoView()
	err := d.db.View(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketUtxo).ForEach(func(k, v []byte) error {
			op, err := decodeOutpointKey(k)
			if err != nil {
				return err
			}
			c, err := decodeCoinEntry(v)
			if err != nil {
				return err
			}
			view.AddCoin(op, c)
			return nil
		}); err != nil {
			return err
		}
		return tx.Bucket(bucketRoles).ForEach(func(k, v []byte) error {
			a, err := decodeAddressKey(k)
			if err != nil {
				return err
			}
			roles, err := decodeRoleEntry(v)
			if err != nil {
				return err
			}
			view.SetRole(a, roles)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ConnectTransaction applies a validated transaction: spends its inputs,
// stores its outputs as coins created at height, and refreshes the role
// record of every address a role output touches.
func (d *DB) ConnectTransaction(tx *consensus.Tx, height int32) error {
	txHash := tx.TxHash()
	isCoinBase := tx.IsCoinBase()
	return d.db.Update(func(btx *bolt.Tx) error {
		utxo := btx.Bucket(bucketUtxo)
		roles := btx.Bucket(bucketRoles)

		if !isCoinBase {
			for i := range tx.Vin {
				if err := utxo.Delete(encodeOutpointKey(tx.Vin[i].PrevOut)); err != nil {
					return err
				}
			}
		}

		for i := range tx.Vout {
			out := tx.Vout[i]
			op := consensus.OutPoint{Hash: txHash, Index: uint32(i)}
			entry := consensus.Coin{Out: out, Height: height, IsCoinBase: isCoinBase}
			if err := utxo.Put(encodeOutpointKey(op), encodeCoinEntry(entry)); err != nil {
				return err
			}
			if out.Kind() != consensus.OUT_ROLE {
				continue
			}
			a := addr.ExtractAddress(out.PkScript)
			if !a.IsValid() {
				log.Warnf("tx %v output %d: role output with no extractable address", txHash, i)
				continue
			}
			key, err := encodeAddressKey(a)
			if err != nil {
				return err
			}
			if err := roles.Put(key, encodeRoleEntry(out.Roles())); err != nil {
				return err
			}
		}
		return nil
	})
}
