package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/zjrosen/govkit/internal/log"
)

const defaultHashCacheSize = 4096

type hashEntry struct {
	sum  string
	size int64
}

// Hasher computes file SHA-256 sums and memoises them by path, size and
// modification time, so repeated builds only re-read changed files.
type Hasher struct {
	cache *lru.Cache[string, hashEntry]
}

// NewHasher creates a Hasher remembering up to size files. size <= 0 uses
// the default.
func NewHasher(size int) *Hasher {
	if size <= 0 {
		size = defaultHashCacheSize
	}
	cache, err := lru.New[string, hashEntry](size)
	if err != nil {
		// only possible for a non-positive size
		panic(err)
	}
	return &Hasher{cache: cache}
}

// Sum returns the hex SHA-256 and size of the file at p.
func (h *Hasher) Sum(fsys fs.FS, p string) (string, int64, error) {
	info, err := fs.Stat(fsys, p)
	if err != nil {
		return "", 0, err
	}
	key := fmt.Sprintf("%s|%d|%d", p, info.Size(), info.ModTime().UnixNano())
	if e, ok := h.cache.Get(key); ok {
		return e.sum, e.size, nil
	}

	f, err := fsys.Open(p)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()

	hw := sha256.New()
	n, err := io.Copy(hw, f)
	if err != nil {
		return "", 0, err
	}
	sum := hex.EncodeToString(hw.Sum(nil))
	h.cache.Add(key, hashEntry{sum: sum, size: n})
	log.Debug(log.CatCache, "hashed file", "path", p, "size", n)
	return sum, n, nil
}

// Len returns the number of memoised hashes.
func (h *Hasher) Len() int {
	return h.cache.Len()
}

// SHA256Hex hashes data. Used by the environment self-check.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
