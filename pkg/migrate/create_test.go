package migrate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateSQLMigrationRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	path, err := createSQLMigration(dir, "Add deal tags", now)
	require.NoError(t, err)
	require.Equal(t, "20250901120000_add_deal_tags.sql", filepath.Base(path))

	_, err = createSQLMigration(dir, "add-deal-tags", now)
	require.Error(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NotZero(t, info.Size())
}
