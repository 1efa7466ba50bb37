package catalog

import (
	"bytes"
	"encoding/json"
	"os"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"

	ierr "github.com/jfiorezelogos/lg-logistica-backend/internal/errors"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/logger"
)

// Repository provides read access to the SKU catalog.
type Repository interface {
	Load() (*Catalog, error)
}

const cacheKey = "catalog"

// FileRepository reads the catalog from a JSON file, caching parsed
// results for a short TTL so repeated collection runs do not re-read
// and re-validate the file on every request.
type FileRepository struct {
	path  string
	cache *gocache.Cache
	log   *logger.Logger
}

func NewFileRepository(path string, log *logger.Logger) *FileRepository {
	return &FileRepository{
		path:  path,
		cache: gocache.New(time.Minute, 5*time.Minute),
		log:   log,
	}
}

func (r *FileRepository) Load() (*Catalog, error) {
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.(*Catalog), nil
	}

	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Could not read catalog file %s", r.path).
			Mark(ierr.ErrNotFound)
	}

	var entries map[string]SKUInfo
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Catalog file is not valid JSON").
			Mark(ierr.ErrValidation)
	}

	// Go map iteration is not stable; keep the file's key order so the
	// last-resort principal fallback does not flap between runs.
	names := documentKeyOrder(raw)
	if len(names) != len(entries) {
		names = names[:0]
		for name := range entries {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	cat := New(names, entries)
	r.log.Debugw("catalog loaded", "path", r.path, "entries", cat.Len())
	r.cache.Set(cacheKey, cat, gocache.DefaultExpiration)
	return cat, nil
}

// Invalidate drops the cached catalog so the next Load re-reads the file.
func (r *FileRepository) Invalidate() {
	r.cache.Delete(cacheKey)
}

// documentKeyOrder walks the top-level object and returns its keys in
// document order.
func documentKeyOrder(raw []byte) []string {
	var names []string
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil
		}
		names = append(names, key)
	}
	return names
}
