package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/xyproto/env/v2"

	"bitcat/internal/source"
	"bitcat/internal/tablefmt"
	"bitcat/internal/word"
)

// Current schema version - increment when TablePayload format changes
const tableCacheSchemaVersion uint16 = 1

// CacheKey identifies a resolution: the catalog bytes plus everything outside
// the file that changes the result.
type CacheKey [32]byte

// TableCache хранит разрешённые таблицы на диске, по ключу из хэша каталога.
// Only successful resolutions are stored. Thread-safe for concurrent access.
type TableCache struct {
	mu  sync.RWMutex
	dir string
}

// TablePayload is what a cache entry holds.
type TablePayload struct {
	Schema uint16
	Path   string
	Table  tablefmt.Document
}

// OpenTableCache opens the cache in dir, or in $XDG_CACHE_HOME/bitcat when
// dir is empty.
func OpenTableCache(dir string) (*TableCache, error) {
	if dir == "" {
		base := env.Str("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "bitcat")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &TableCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *TableCache) Dir() string { return c.dir }

// KeyFor derives the cache key of a loaded catalog file.
func KeyFor(f *source.File) CacheKey {
	h := sha256.New()
	h.Write(f.Hash[:])
	var meta [4]byte
	binary.LittleEndian.PutUint16(meta[:2], tableCacheSchemaVersion)
	// usize без ptr_bits зависит от машины
	binary.LittleEndian.PutUint16(meta[2:], uint16(word.HostPtrBits))
	h.Write(meta[:])
	var key CacheKey
	copy(key[:], h.Sum(nil))
	return key
}

func (c *TableCache) pathFor(key CacheKey) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первым двум символам, как у git objects
	return filepath.Join(c.dir, "tables", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the cache.
func (c *TableCache) Put(key CacheKey, payload *TablePayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		// после успешного Rename файла уже нет
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, rmErr)
		}
	}()

	payload.Schema = tableCacheSchemaVersion
	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// Get reads a payload. Entries written by another schema version are misses.
func (c *TableCache) Get(key CacheKey) (*TablePayload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload TablePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", err)
	}
	if payload.Schema != tableCacheSchemaVersion {
		return nil, false, nil
	}
	return &payload, true, nil
}

// DropAll invalidates the cache.
func (c *TableCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
