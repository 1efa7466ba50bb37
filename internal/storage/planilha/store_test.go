package planilha

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/jfiorezelogos/lg-logistica-backend/internal/errors"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), logger.L)
	require.NoError(t, err)
	return s
}

func TestCreateAndLoad(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Create("maio-2025", map[string]any{"box": "Box Regular"}))

	doc, err := s.Load("maio-2025")
	require.NoError(t, err)
	assert.Equal(t, "maio-2025", doc.PlanilhaID)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, "Box Regular", doc.Meta["box"])
	assert.Empty(t, doc.Lines)
	assert.Empty(t, doc.Index.DedupIDs)
	assert.NotEmpty(t, doc.CreatedAt)
}

func TestCreate_AlreadyExists(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Create("p1", nil))
	err := s.Create("p1", nil)
	require.Error(t, err)
	assert.True(t, ierr.IsAlreadyExists(err))
}

func TestLoad_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load("missing")
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
}

func TestAppend_AddsAndMerges(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create("p1", nil))

	added, updated, err := s.Append("p1", []Row{
		{"dedup_id": "t1", "Produto": "Box Regular", "Valor Unitário": "80,00"},
		{"dedup_id": "t2", "Produto": "Caneca"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 0, updated)

	// Re-collecting the same rows updates in place instead of duplicating.
	added, updated, err = s.Append("p1", []Row{
		{"dedup_id": "t1", "Produto": "Box Especial", "Cupom": "promo"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, 1, updated)

	doc, err := s.Load("p1")
	require.NoError(t, err)
	require.Len(t, doc.Lines, 2)
	assert.Equal(t, 2, doc.RowCount)

	merged := doc.Lines[0]
	assert.Equal(t, "Box Especial", merged["Produto"])
	assert.Equal(t, "promo", merged["Cupom"])
	// Columns absent from the update survive the shallow merge.
	assert.Equal(t, "80,00", merged["Valor Unitário"])
}

func TestAppend_InfersIdentityFromTransactionID(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create("p1", nil))

	added, updated, err := s.Append("p1", []Row{
		{"transaction_id": "tx9", "Produto": "Livro Extra"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 0, updated)

	doc, err := s.Load("p1")
	require.NoError(t, err)
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, "tx9", doc.Lines[0]["dedup_id"], "inferred identity is stamped back on the row")

	added, updated, err = s.Append("p1", []Row{
		{"transaction_id": "tx9", "Cupom": "promo"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, 1, updated)
}

func TestAppend_RowWithoutIdentityIsKept(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create("p1", nil))

	added, updated, err := s.Append("p1", []Row{
		{"Produto": "Sem ID"},
		{"Produto": "Sem ID"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 0, updated)
}

func TestAppend_IndexSorted(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create("p1", nil))

	_, _, err := s.Append("p1", []Row{
		{"dedup_id": "t3:LIV-1"},
		{"dedup_id": "t1"},
		{"dedup_id": "t2:CAN-1"},
	})
	require.NoError(t, err)

	doc, err := s.Load("p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2:CAN-1", "t3:LIV-1"}, doc.Index.DedupIDs)
}

func TestAppend_MissingPlanilha(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.Append("missing", []Row{{"dedup_id": "t1"}})
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Create("b", nil))
	require.NoError(t, s.Create("a", nil))

	ids, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}
