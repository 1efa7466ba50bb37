package rules

import (
	"encoding/json"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"

	ierr "github.com/jfiorezelogos/lg-logistica-backend/internal/errors"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/logger"
)

// Repository provides read access to the rule set.
type Repository interface {
	Load() ([]Rule, error)
}

const cacheKey = "rules"

// FileRepository reads rules from a JSON file. The file is either a
// bare array or an object with a "rules" (or legacy "regras") key.
// Parsed results are cached for a short TTL.
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

func (r *FileRepository) Load() ([]Rule, error) {
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.([]Rule), nil
	}

	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			// A missing rules file means no rules, not a failure.
			r.log.Warnw("rules file not found, running without rules", "path", r.path)
			return nil, nil
		}
		return nil, ierr.WithError(err).
			WithHintf("Could not read rules file %s", r.path).
			Mark(ierr.ErrSystem)
	}

	rs, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	r.log.Debugw("rules loaded", "path", r.path, "count", len(rs))
	r.cache.Set(cacheKey, rs, gocache.DefaultExpiration)
	return rs, nil
}

// Invalidate drops the cached rule set so the next Load re-reads the file.
func (r *FileRepository) Invalidate() {
	r.cache.Delete(cacheKey)
}

// Parse decodes a rules document, accepting the array form and both
// envelope key spellings.
func Parse(raw []byte) ([]Rule, error) {
	var rs []Rule
	if err := json.Unmarshal(raw, &rs); err == nil {
		return rs, nil
	}

	var envelope struct {
		Rules  []Rule `json:"rules"`
		Regras []Rule `json:"regras"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Rules file is not valid JSON").
			Mark(ierr.ErrValidation)
	}
	if envelope.Rules != nil {
		return envelope.Rules, nil
	}
	return envelope.Regras, nil
}
