package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// cacheFileExtension is the file extension used for cache entries.
const cacheFileExtension = ".json"

const bytesPerMB = 1 << 20

// Common cache errors.
var (
	ErrCacheNotFound   = errors.New("cache entry not found")
	ErrCacheExpired    = errors.New("cache entry expired")
	ErrInvalidCacheKey = errors.New("cache key cannot be empty")
	ErrCacheDisabled   = errors.New("cache is disabled")
)

// FileStore keeps entries as JSON files in one directory. Safe for concurrent use.
type FileStore struct {
	directory string
	enabled   bool
	ttl       time.Duration
	maxBytes  int64

	mu sync.RWMutex
}

// Stats summarises the store's contents.
type Stats struct {
	Entries     int
	Expired     int
	Bytes       int64
	Oldest      time.Time
	Newest      time.Time
	ByWorkspace map[string]int
}

// NewFileStore creates a store in directory, creating it if needed. A disabled
// store answers every call with ErrCacheDisabled. maxSizeMB of zero means unbounded.
func NewFileStore(directory string, enabled bool, ttlSeconds, maxSizeMB int) (*FileStore, error) {
	if !enabled {
		return &FileStore{enabled: false}, nil
	}

	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}

	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &FileStore{
		directory: directory,
		enabled:   true,
		ttl:       time.Duration(ttlSeconds) * time.Second,
		maxBytes:  int64(maxSizeMB) * bytesPerMB,
	}, nil
}

// Get returns the entry for key. Expired entries are removed and reported
// as ErrCacheExpired.
func (s *FileStore) Get(key string) (*Entry, error) {
	if !s.enabled {
		return nil, ErrCacheDisabled
	}
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	filePath := s.keyToFilePath(key)

	s.mu.RLock()
	entry, err := readEntry(filePath)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if entry.IsExpired() {
		s.mu.Lock()
		_ = os.Remove(filePath)
		s.mu.Unlock()
		return nil, ErrCacheExpired
	}

	return entry, nil
}

// Set stores data under key with the store's TTL.
func (s *FileStore) Set(key string, meta Meta, data json.RawMessage) error {
	return s.SetWithTTL(key, meta, data, s.ttl)
}

// SetWithTTL stores data under key with an explicit TTL, then evicts the
// oldest entries if the store exceeds its size limit.
func (s *FileStore) SetWithTTL(key string, meta Meta, data json.RawMessage, ttl time.Duration) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	entryData, err := json.Marshal(NewEntry(key, meta, data, ttl))
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.keyToFilePath(key)
	tempPath := filePath + ".tmp"
	if writeErr := os.WriteFile(tempPath, entryData, 0o600); writeErr != nil {
		return fmt.Errorf("failed to write cache file: %w", writeErr)
	}
	if renameErr := os.Rename(tempPath, filePath); renameErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename cache file: %w", renameErr)
	}

	return s.enforceLimitLocked()
}

// Delete removes the entry for key. Deleting a missing entry is not an error.
func (s *FileStore) Delete(key string) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.keyToFilePath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (s *FileStore) Clear() (int, error) {
	return s.removeWhere(func(string, *Entry) bool { return true })
}

// ClearWorkspace removes the entries fetched for workspace.
func (s *FileStore) ClearWorkspace(workspace string) (int, error) {
	return s.removeWhere(func(_ string, e *Entry) bool { return e != nil && e.Workspace == workspace })
}

// CleanupExpired removes expired and unreadable entries.
func (s *FileStore) CleanupExpired() (int, error) {
	return s.removeWhere(func(_ string, e *Entry) bool { return e == nil || e.IsExpired() })
}

// Stats walks the store once and summarises it.
func (s *FileStore) Stats() (Stats, error) {
	if !s.enabled {
		return Stats{}, ErrCacheDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.listLocked()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{ByWorkspace: make(map[string]int)}
	for _, f := range files {
		stats.Entries++
		stats.Bytes += f.size
		if f.entry == nil {
			continue
		}
		if f.entry.IsExpired() {
			stats.Expired++
		}
		stats.ByWorkspace[f.entry.Workspace]++
		if stats.Oldest.IsZero() || f.entry.CreatedAt.Before(stats.Oldest) {
			stats.Oldest = f.entry.CreatedAt
		}
		if f.entry.CreatedAt.After(stats.Newest) {
			stats.Newest = f.entry.CreatedAt
		}
	}
	return stats, nil
}

// IsEnabled returns true if caching is enabled.
func (s *FileStore) IsEnabled() bool {
	return s != nil && s.enabled
}

// GetDirectory returns the cache directory path.
func (s *FileStore) GetDirectory() string {
	return s.directory
}

// GetTTL returns the default TTL.
func (s *FileStore) GetTTL() time.Duration {
	return s.ttl
}

type cacheFile struct {
	path  string
	size  int64
	entry *Entry // nil when unreadable
}

func (s *FileStore) listLocked() ([]cacheFile, error) {
	dirEntries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	files := make([]cacheFile, 0, len(dirEntries))
	for _, d := range dirEntries {
		if d.IsDir() || filepath.Ext(d.Name()) != cacheFileExtension {
			continue
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			continue
		}
		path := filepath.Join(s.directory, d.Name())
		entry, _ := readEntry(path)
		files = append(files, cacheFile{path: path, size: info.Size(), entry: entry})
	}
	return files, nil
}

func (s *FileStore) removeWhere(match func(path string, e *Entry) bool) (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.listLocked()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, f := range files {
		if !match(f.path, f.entry) {
			continue
		}
		if rmErr := os.Remove(f.path); rmErr != nil && !os.IsNotExist(rmErr) {
			return removed, fmt.Errorf("failed to remove cache file %s: %w", filepath.Base(f.path), rmErr)
		}
		removed++
	}
	return removed, nil
}

// enforceLimitLocked evicts entries, oldest first, until the store fits maxBytes.
func (s *FileStore) enforceLimitLocked() error {
	if s.maxBytes <= 0 {
		return nil
	}

	files, err := s.listLocked()
	if err != nil {
		return err
	}

	var total int64
	for _, f := range files {
		total += f.size
	}
	if total <= s.maxBytes {
		return nil
	}

	sort.Slice(files, func(i, j int) bool {
		return createdAt(files[i]).Before(createdAt(files[j]))
	})
	for _, f := range files {
		if total <= s.maxBytes {
			break
		}
		if rmErr := os.Remove(f.path); rmErr != nil && !os.IsNotExist(rmErr) {
			return fmt.Errorf("failed to evict cache file: %w", rmErr)
		}
		total -= f.size
	}
	return nil
}

// createdAt sorts unreadable files first so they are evicted before real entries.
func createdAt(f cacheFile) time.Time {
	if f.entry == nil {
		return time.Time{}
	}
	return f.entry.CreatedAt
}

func readEntry(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return &entry, nil
}

// keyToFilePath converts a cache key to a file path inside the store.
func (s *FileStore) keyToFilePath(key string) string {
	safeKey := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(key)
	return filepath.Join(s.directory, safeKey+cacheFileExtension)
}
