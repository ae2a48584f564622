package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/quill/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketSession = []byte("session")
	bucketPages   = []byte("pages")
	bucketHistory = []byte("history")
)

const (
	tokenKey   = "token"
	historyKey = "terms"
)

// pageRecord is the on-disk form of a cached page
type pageRecord struct {
	FetchedAt time.Time       `json:"fetchedAt"`
	Data      json.RawMessage `json:"data"`
}

// BoltStore implements domain.Store using BoltDB.
type BoltStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

var _ domain.Store = (*BoltStore)(nil)

// New opens (or creates) the store for one server under baseDir.
// An empty baseDir gives a memory-only store.
func New(baseDir, serverURL string) (*BoltStore, error) {
	if baseDir == "" {
		return &BoltStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseDir
	if serverURL != "" {
		dir = filepath.Join(baseDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "quill.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSession, bucketPages, bucketHistory} {
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

	return &BoltStore{db: db, cache: make(map[string][]byte)}, nil
}

// hashServerURL keeps credentials and pages of different servers apart
func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *BoltStore) getRaw(bucket []byte, key string) ([]byte, bool) {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return data, true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false
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
		return nil, false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return data, true
}

func (s *BoltStore) get(bucket []byte, key string, dest any) bool {
	data, ok := s.getRaw(bucket, key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (s *BoltStore) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *BoltStore) delete(bucket []byte, key string) error {
	s.mu.Lock()
	delete(s.cache, string(bucket)+":"+key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

func (s *BoltStore) deletePrefix(bucket []byte, prefix string) {
	s.mu.Lock()
	cachePrefix := string(bucket) + ":" + prefix
	for k := range s.cache {
		if strings.HasPrefix(k, cachePrefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		var keys [][]byte
		c := b.Cursor()
		prefixBytes := []byte(prefix)
		for k, _ := c.Seek(prefixBytes); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// === Credential ===

func (s *BoltStore) LoadToken() (string, error) {
	var token string
	s.get(bucketSession, tokenKey, &token)
	return token, nil
}

func (s *BoltStore) SaveToken(token string) error {
	if token == "" {
		return s.DeleteToken()
	}
	return s.set(bucketSession, tokenKey, token)
}

func (s *BoltStore) DeleteToken() error {
	return s.delete(bucketSession, tokenKey)
}

// === Page snapshots ===

func (s *BoltStore) LoadPage(key string) ([]byte, time.Time, bool) {
	var rec pageRecord
	if !s.get(bucketPages, key, &rec) || len(rec.Data) == 0 {
		return nil, time.Time{}, false
	}
	return rec.Data, rec.FetchedAt, true
}

func (s *BoltStore) SavePage(key string, data []byte, fetchedAt time.Time) error {
	return s.set(bucketPages, key, pageRecord{FetchedAt: fetchedAt, Data: data})
}

// DeletePages removes every snapshot whose key starts with prefix
func (s *BoltStore) DeletePages(prefix string) {
	s.deletePrefix(bucketPages, prefix)
}

// === Search history ===

func (s *BoltStore) SearchHistory() []string {
	var terms []string
	s.get(bucketHistory, historyKey, &terms)
	return terms
}

func (s *BoltStore) SaveSearchHistory(terms []string) error {
	return s.set(bucketHistory, historyKey, terms)
}
