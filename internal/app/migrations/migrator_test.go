package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schema "github.com/stayease/stayease-api/migrations"
)

func TestPendingFiles_SortedSQLOnly(t *testing.T) {
	fsys := fstest.MapFS{
		"002_feed.sql":  {Data: []byte("SELECT 1;")},
		"001_init.sql":  {Data: []byte("SELECT 1;")},
		"README.md":     {Data: []byte("docs")},
		"010_later.sql": {Data: []byte("SELECT 1;")},
	}

	files, err := PendingFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_feed.sql", "010_later.sql"}, files)
}

func TestVersionFromFilename(t *testing.T) {
	assert.Equal(t, "001", VersionFromFilename("001_init.sql"))
	assert.Equal(t, "42", VersionFromFilename("42_add_index.sql"))
}

func TestEmbeddedSchemaContainsCoreTables(t *testing.T) {
	files, err := PendingFiles(schema.FS)
	require.NoError(t, err)
	require.NotEmpty(t, files)

	content, err := schema.FS.ReadFile(files[0])
	require.NoError(t, err)
	for _, table := range []string{"apartments", "users", "invoices", "transactions", "posts", "service_requests"} {
		assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, string(content), "transactions_transaction_code_key")
}
