package store

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

const usersBktName = "users"

// Bolt is a storage that uses BoltDB as a backend.
type Bolt struct {
	db *bolt.DB
}

// NewBolt creates new Bolt storage.
func NewBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make boltdb for %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(usersBktName)); err != nil {
			return fmt.Errorf("create top-level bucket %s: %w", usersBktName, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("make buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Load returns all users from storage.
func (b *Bolt) Load(context.Context) (Records, error) {
	recs := Records{}
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(usersBktName))
		err := bkt.ForEach(func(k, v []byte) error {
			var u User
			if err := json.Unmarshal(v, &u); err != nil {
				return fmt.Errorf("unmarshal user %s: %w", k, err)
			}
			recs[UserID(k)] = u
			return nil
		})
		if err != nil {
			return fmt.Errorf("foreach: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("view storage: %w", err)
	}
	return recs, nil
}

// Save replaces the users bucket with the given records in a single transaction.
func (b *Bolt) Save(_ context.Context, recs Records) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(usersBktName)); err != nil {
			return fmt.Errorf("drop users bucket: %w", err)
		}

		bkt, err := tx.CreateBucket([]byte(usersBktName))
		if err != nil {
			return fmt.Errorf("create users bucket: %w", err)
		}

		for id, u := range recs {
			bts, err := json.Marshal(u)
			if err != nil {
				return fmt.Errorf("marshal user %s: %w", id, err)
			}

			if err := bkt.Put([]byte(id), bts); err != nil {
				return fmt.Errorf("put user %s to storage: %w", id, err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// Close closes the storage.
func (b *Bolt) Close() error { return b.db.Close() }
