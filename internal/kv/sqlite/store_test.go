package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/clinicdesk/internal/kv"
)

var _ kv.Backend = (*Store)(nil)

func createTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clinic.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	_, path := createTestStore(t)

	_, err := os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clinic.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		require.NoError(t, s.Close())
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/clinic.db")
	assert.Error(t, err)
}

func TestPragma_JournalMode(t *testing.T) {
	s, _ := createTestStore(t)
	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	s, _ := createTestStore(t)

	_, ok, err := s.Get(ctx, kv.KeyPatients)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, kv.KeyPatients, `[{"id":1}]`))
	require.NoError(t, s.Set(ctx, kv.KeyPatients, `[{"id":1},{"id":2}]`))

	v, ok, err := s.Get(ctx, kv.KeyPatients)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1},{"id":2}]`, v)

	require.NoError(t, s.Remove(ctx, kv.KeyPatients))
	_, ok, err = s.Get(ctx, kv.KeyPatients)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, s.Remove(ctx, "never-set"))
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "clinic.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, kv.KeyUser, `{"id":1,"username":"admin","role":"admin"}`))
	require.NoError(t, s1.Set(ctx, kv.KeyDoctors, `[]`))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	v, ok, err := s2.Get(ctx, kv.KeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":1,"username":"admin","role":"admin"}`, v)

	keys, err := s2.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{kv.KeyDoctors, kv.KeyUser}, keys)
}

func TestStore_InMemory(t *testing.T) {
	ctx := context.Background()
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, kv.KeyAppointments, `[]`))
	v, ok, err := s.Get(ctx, kv.KeyAppointments)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)
}
