package postgres

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"

	"github.com/roach88/clinicdesk/internal/kv"
)

var _ kv.Backend = (*Store)(nil)

func TestEntry_TableName(t *testing.T) {
	assert.Equal(t, "clinicdesk_kv", entry{}.TableName())
}

// A pre-existing table makes the migration's CREATE TABLE fail; the pool
// handed to gorm must be closed on that path.
func TestOpen_MigrateFailureClosesPool(t *testing.T) {
	conn, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_, err = conn.Exec(`CREATE TABLE clinicdesk_kv (bucket TEXT PRIMARY KEY)`)
	require.NoError(t, err)

	s, err := open(postgres.New(postgres.Config{Conn: conn}))
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "migrate kv table")
	assert.ErrorContains(t, conn.Ping(), "database is closed")
}

// Requires a reachable database; set CLINICDESK_TEST_POSTGRES_DSN to run.
func TestStore_RoundTrip(t *testing.T) {
	dsn := os.Getenv("CLINICDESK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CLINICDESK_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	s, err := Open(dsn)
	require.NoError(t, err)
	defer s.Close()

	key := "test-" + t.Name()
	t.Cleanup(func() { _ = s.Remove(ctx, key) })

	require.NoError(t, s.Set(ctx, key, `[1]`))
	require.NoError(t, s.Set(ctx, key, `[1,2]`))

	v, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, v)

	require.NoError(t, s.Remove(ctx, key))
	_, ok, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
