package identity

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/parlorchat/parlor/pkg/protocol"
)

var (
	bucketIdentity = []byte("identity")
	keySelf        = []byte("self")
)

// BoltStore implements Store on a local bbolt database.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the identity database under dataDir.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "parlor.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketIdentity)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Load implements Store.
func (s *BoltStore) Load() (*protocol.User, error) {
	var user *protocol.User
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketIdentity).Get(keySelf)
		if data == nil {
			return nil
		}
		var u protocol.User
		if err := json.Unmarshal(data, &u); err != nil {
			return err
		}
		user = &u
		return nil
	})
	return user, err
}

// Create implements Store. The new identity gets a UUID id and a generated
// display name.
func (s *BoltStore) Create() (*protocol.User, error) {
	id := uuid.NewString()
	user := &protocol.User{
		ID:       id,
		Username: "guest-" + id[:8],
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketIdentity).Put(keySelf, data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist identity: %w", err)
	}

	return user, nil
}
