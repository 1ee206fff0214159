package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/google/btree"
	"go.etcd.io/bbolt"

	"github.com/yairfalse/vakta/types"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// Bucket names in bbolt
var (
	bucketRoles     = []byte("roles")
	bucketUsers     = []byte("users")
	bucketPolicies  = []byte("policies")
	bucketBaselines = []byte("baselines")
	bucketActivity  = []byte("activity")
	bucketAlerts    = []byte("alerts")
	bucketMeta      = []byte("meta")
)

var keyCurrentSeq = []byte("current_seq")

// Store is the embedded store backing the detection service: roles,
// users, policies, baselines, activity history, and alerts, all in one
// bbolt file. An in-memory btree index over activity entries serves
// trailing-count queries without touching disk.
type Store struct {
	mu sync.RWMutex

	// In-memory index of (subject, timestamp) activity entries
	index *btree.BTreeG[activityEntry]

	// On-disk storage
	db *bbolt.DB

	// Monotonic activity sequence
	currentSeq int64

	dir string
}

// Open creates or opens a store in the given directory
func Open(dir string) (*Store, error) {
	dbPath := filepath.Join(dir, "vakta.db")

	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{
			bucketRoles, bucketUsers, bucketPolicies, bucketBaselines,
			bucketActivity, bucketAlerts, bucketMeta,
		} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{
		index: btree.NewG[activityEntry](32, activityEntryLess),
		db:    db,
		dir:   dir,
	}

	if err := store.loadSequence(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.rebuildIndex(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the store
func (s *Store) Close() error {
	return s.db.Close()
}

// PutRole stores a role
func (s *Store) PutRole(role types.Role) error {
	if role.ID == "" {
		return fmt.Errorf("role ID cannot be empty")
	}
	return s.putJSON(bucketRoles, []byte(role.ID), role)
}

// GetRole fetches a role by ID
func (s *Store) GetRole(id string) (*types.Role, error) {
	var role types.Role
	if err := s.getJSON(bucketRoles, []byte(id), &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// PutUser stores a user
func (s *Store) PutUser(user types.User) error {
	if user.ID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}
	if user.RoleID == "" {
		return fmt.Errorf("user role ID cannot be empty")
	}
	return s.putJSON(bucketUsers, []byte(user.ID), user)
}

// GetUser fetches a user by ID
func (s *Store) GetUser(id string) (*types.User, error) {
	var user types.User
	if err := s.getJSON(bucketUsers, []byte(id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// PutPolicy stores one authorized (action, resource) pair for a role
func (s *Store) PutPolicy(policy types.Policy) error {
	if policy.RoleID == "" || policy.Action == "" || policy.Resource == "" {
		return fmt.Errorf("policy role, action, and resource are all required")
	}
	return s.putJSON(bucketPolicies, policyKey(policy), policy)
}

// PoliciesForRole returns every policy row for a role
func (s *Store) PoliciesForRole(roleID string) ([]types.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var policies []types.Policy
	prefix := []byte(roleID + "\x00")

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketPolicies).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var policy types.Policy
			if err := json.Unmarshal(v, &policy); err != nil {
				return fmt.Errorf("corrupt policy row %q: %w", k, err)
			}
			policies = append(policies, policy)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return policies, nil
}

// PutBaseline stores a role's behavioral baseline, at most one per role
func (s *Store) PutBaseline(baseline types.Baseline) error {
	if err := baseline.Validate(); err != nil {
		return err
	}
	return s.putJSON(bucketBaselines, []byte(baseline.RoleID), baseline)
}

// BaselineForRole fetches a role's baseline. A role without a baseline
// returns (nil, nil): absence of data is a defined state for the
// detection engine, never an error.
func (s *Store) BaselineForRole(roleID string) (*types.Baseline, error) {
	var baseline types.Baseline
	err := s.getJSON(bucketBaselines, []byte(roleID), &baseline)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &baseline, nil
}

// Stats returns current activity count, alert count, and sequence
func (s *Store) Stats() (activityCount int, alertCount int, currentSeq int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_ = s.db.View(func(tx *bbolt.Tx) error {
		activityCount = tx.Bucket(bucketActivity).Stats().KeyN
		alertCount = tx.Bucket(bucketAlerts).Stats().KeyN
		return nil
	})
	return activityCount, alertCount, s.currentSeq
}

// Helper functions

func (s *Store) putJSON(bucket, key []byte, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put(key, value)
	})
}

func (s *Store) getJSON(bucket, key []byte, v any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucket).Get(key)
		if data == nil {
			return fmt.Errorf("key %q: %w", key, ErrNotFound)
		}
		return json.Unmarshal(data, v)
	})
}

func (s *Store) loadSequence() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keyCurrentSeq)
		if data == nil {
			return nil
		}
		seq, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("corrupt sequence value %q: %w", data, err)
		}
		s.currentSeq = seq
		return nil
	})
}

func policyKey(policy types.Policy) []byte {
	// NUL separators keep role prefixes unambiguous under cursor scans
	return []byte(policy.RoleID + "\x00" + policy.Action + "\x00" + policy.Resource)
}

func seqToBytes(seq int64) []byte {
	return []byte(strconv.FormatInt(seq, 10))
}
