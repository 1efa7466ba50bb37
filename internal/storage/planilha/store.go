// Package planilha persists collected spreadsheet rows as JSON
// documents, merging re-collections by row identity instead of
// duplicating lines.
package planilha

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	ierr "github.com/jfiorezelogos/lg-logistica-backend/internal/errors"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Row is one spreadsheet line as stored: a flat column -> value map,
// so merges can enrich rows with columns this build does not know.
type Row = map[string]any

// Document is the persisted form of one planilha.
type Document struct {
	PlanilhaID string         `json:"planilha_id"`
	Version    int            `json:"version"`
	CreatedAt  string         `json:"created_at"`
	UpdatedAt  string         `json:"updated_at"`
	RowCount   int            `json:"row_count"`
	Meta       map[string]any `json:"meta"`
	Lines      []Row          `json:"lines"`
	Index      Index          `json:"index"`
}

// Index keeps the sorted row identities for quick dedupe checks.
type Index struct {
	DedupIDs []string `json:"dedup_ids"`
}

// Store reads and writes planilha documents under one directory.
// Writes are atomic (temp file plus rename) and serialized by an
// in-process mutex; this is a single-writer store.
type Store struct {
	dir string
	mu  sync.Mutex
	log *logger.Logger
	now func() time.Time
}

func NewStore(dir string, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Could not create planilhas directory %s", dir).
			Mark(ierr.ErrSystem)
	}
	return &Store{dir: dir, log: log, now: time.Now}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *Store) timestamp() string {
	return s.now().Format("2006-01-02 15:04:05")
}

// Create writes an empty planilha with the given id and metadata.
func (s *Store) Create(id string, meta map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(id)); err == nil {
		return ierr.NewError("planilha already exists").
			WithHintf("Planilha %s already exists", id).
			Mark(ierr.ErrAlreadyExists)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	now := s.timestamp()
	doc := &Document{
		PlanilhaID: id,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
		Meta:       meta,
		Lines:      []Row{},
		Index:      Index{DedupIDs: []string{}},
	}
	return s.save(id, doc)
}

// Load reads one planilha document.
func (s *Store) Load(id string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id)
}

func (s *Store) load(id string) (*Document, error) {
	raw, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ierr.NewError("planilha not found").
				WithHintf("Planilha %s does not exist", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHintf("Could not read planilha %s", id).
			Mark(ierr.ErrSystem)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Planilha %s is not valid JSON", id).
			Mark(ierr.ErrSystem)
	}
	if doc.Lines == nil {
		doc.Lines = []Row{}
	}
	if doc.Index.DedupIDs == nil {
		doc.Index.DedupIDs = []string{}
	}
	return &doc, nil
}

func (s *Store) save(id string, doc *Document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Could not encode planilha %s", id).
			Mark(ierr.ErrSystem)
	}

	tmp, err := os.CreateTemp(s.dir, id+".*.tmp")
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Could not create temp file for planilha %s", id).
			Mark(ierr.ErrSystem)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return ierr.WithError(err).
			WithHintf("Could not write planilha %s", id).
			Mark(ierr.ErrSystem)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return ierr.WithError(err).
			WithHintf("Could not write planilha %s", id).
			Mark(ierr.ErrSystem)
	}
	if err := os.Rename(tmpName, s.path(id)); err != nil {
		os.Remove(tmpName)
		return ierr.WithError(err).
			WithHintf("Could not persist planilha %s", id).
			Mark(ierr.ErrSystem)
	}
	return nil
}

// List returns the ids of every stored planilha, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Could not list planilhas directory %s", s.dir).
			Mark(ierr.ErrSystem)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// inferDedupID resolves the canonical row identity, trying the
// explicit dedup_id first and then the per-source line identifiers.
func inferDedupID(row Row) string {
	for _, key := range []string{"dedup_id", "id_line_item", "line_item_id", "transaction_id"} {
		val, ok := row[key]
		if !ok || val == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprintf("%v", val)); s != "" {
			return s
		}
	}
	return ""
}

// ensureDedupID stamps the inferred identity back on the row so the
// persisted document always carries it explicitly.
func ensureDedupID(row Row) string {
	if did, _ := row["dedup_id"].(string); strings.TrimSpace(did) != "" {
		return strings.TrimSpace(did)
	}
	did := inferDedupID(row)
	if did != "" {
		row["dedup_id"] = did
	}
	return did
}

// Append adds rows to a planilha, merging by row identity: a known
// dedup_id shallow-merges the new columns over the stored row instead
// of appending a duplicate. Returns (added, updated).
func (s *Store) Append(id string, rows []Row) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(id)
	if err != nil {
		return 0, 0, err
	}

	idx := make(map[string]Row, len(doc.Lines))
	for _, row := range doc.Lines {
		if did := ensureDedupID(row); did != "" {
			idx[did] = row
		}
	}

	added, updated := 0, 0
	for _, row := range rows {
		did := ensureDedupID(row)
		if did == "" {
			// No identity at all: keep the row, it cannot collide.
			doc.Lines = append(doc.Lines, row)
			added++
			continue
		}
		if existing, ok := idx[did]; ok {
			for k, v := range row {
				existing[k] = v
			}
			updated++
			continue
		}
		doc.Lines = append(doc.Lines, row)
		idx[did] = row
		added++
	}

	doc.RowCount = len(doc.Lines)
	doc.UpdatedAt = s.timestamp()
	ids := make([]string, 0, len(idx))
	for did := range idx {
		ids = append(ids, did)
	}
	sort.Strings(ids)
	doc.Index.DedupIDs = ids

	if err := s.save(id, doc); err != nil {
		return 0, 0, err
	}
	s.log.Debugw("planilha appended", "planilha_id", id, "added", added, "updated", updated, "rows", doc.RowCount)
	return added, updated, nil
}
