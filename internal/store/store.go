package store

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/curator/internal/domain"
)

// Bucket names
var (
	bucketPreferences = []byte("preferences")
	bucketActivity    = []byte("activity")
)

const (
	preferencesKey = "dashboard"

	// MaxActivity is how many history records are kept before the oldest are pruned
	MaxActivity = 1000
)

// DashboardStore implements domain.Store using BoltDB.
type DashboardStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory state

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte

	// Memory-only history, used when db is nil
	activity []domain.Activity
}

// NewDashboardStore opens the store for one curator backend. Each backend
// URL gets its own subdirectory so histories never mix. An empty baseDir
// gives a memory-only store.
func NewDashboardStore(baseDir, serverURL string) (*DashboardStore, error) {
	if baseDir == "" {
		return &DashboardStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseDir
	if serverURL != "" {
		dir = filepath.Join(baseDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "curator.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketPreferences, bucketActivity} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &DashboardStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *DashboardStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *DashboardStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *DashboardStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

// === Preferences ===

// LoadPreferences returns the saved dashboard state, if any
func (s *DashboardStore) LoadPreferences() (domain.Preferences, bool) {
	var prefs domain.Preferences
	if !s.get(bucketPreferences, preferencesKey, &prefs) {
		return domain.Preferences{}, false
	}
	if !prefs.Filter.Valid() {
		prefs.Filter = domain.StatusPending
	}
	return prefs, true
}

// SavePreferences persists the dashboard state
func (s *DashboardStore) SavePreferences(prefs domain.Preferences) error {
	return s.set(bucketPreferences, preferencesKey, prefs)
}

// === Activity ===

// Record appends an action outcome to the history
func (s *DashboardStore) Record(activity domain.Activity) error {
	if activity.At.IsZero() {
		activity.At = time.Now()
	}

	if s.db == nil {
		s.mu.Lock()
		s.activity = append(s.activity, activity)
		if over := len(s.activity) - MaxActivity; over > 0 {
			s.activity = append([]domain.Activity(nil), s.activity[over:]...)
		}
		s.mu.Unlock()
		return nil
	}

	data, err := json.Marshal(activity)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketActivity)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		if err := b.Put(sequenceKey(seq), data); err != nil {
			return err
		}
		return pruneActivity(b)
	})
}

// RecentActivity returns up to limit records, newest first. A non-positive
// limit returns everything.
func (s *DashboardStore) RecentActivity(limit int) ([]domain.Activity, error) {
	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		var out []domain.Activity
		for i := len(s.activity) - 1; i >= 0; i-- {
			if limit > 0 && len(out) >= limit {
				break
			}
			out = append(out, s.activity[i])
		}
		return out, nil
	}

	var out []domain.Activity
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketActivity).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var a domain.Activity
			if err := json.Unmarshal(v, &a); err != nil {
				return fmt.Errorf("decode activity %x: %w", k, err)
			}
			out = append(out, a)
		}
		return nil
	})
	return out, err
}

// sequenceKey encodes seq big-endian so keys sort chronologically
func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

func pruneActivity(b *bolt.Bucket) error {
	var keys [][]byte
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}
	over := len(keys) - MaxActivity
	for i := 0; i < over; i++ {
		if err := b.Delete(keys[i]); err != nil {
			return err
		}
	}
	return nil
}
