package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/jfiorezelogos/lg-logistica-backend/internal/errors"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/logger"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skus.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileRepository_LoadKeepsDocumentOrder(t *testing.T) {
	path := writeCatalog(t, `{
		"Zeta Box": {"sku": "ZET-1", "tipo": "produto"},
		"Alfa Box": {"sku": "ALF-1", "tipo": "produto"},
		"Meio Box": {"sku": "MEI-1", "tipo": "produto"}
	}`)

	repo := NewFileRepository(path, logger.L)
	cat, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Zeta Box", "Alfa Box", "Meio Box"}, cat.Names(),
		"file order decides the fallback entry, not map order")
}

func TestFileRepository_MissingFile(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"), logger.L)
	_, err := repo.Load()
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
}

func TestFileRepository_InvalidJSON(t *testing.T) {
	path := writeCatalog(t, `{broken`)
	repo := NewFileRepository(path, logger.L)
	_, err := repo.Load()
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
}

func TestFileRepository_CachesUntilInvalidated(t *testing.T) {
	path := writeCatalog(t, `{"Box": {"sku": "B-1", "tipo": "produto"}}`)
	repo := NewFileRepository(path, logger.L)

	cat, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())

	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))
	cat, err = repo.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len(), "cached copy served until invalidation")

	repo.Invalidate()
	cat, err = repo.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cat.Len())
}
