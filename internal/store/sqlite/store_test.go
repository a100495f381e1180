package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eclipse/internal/store"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "eclipse.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), " ")
	assert.Error(t, err)
}

func TestPutGetRoundTrip(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, store.RootConfig{GuildID: "g1", RootChannelID: "r1", DefaultLabel: "Lobby"}))
	require.NoError(t, s.Put(ctx, store.RootConfig{GuildID: "g2", RootChannelID: "r2"}))

	cfg, ok, err := s.GetRootConfig(ctx, "g1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, store.RootConfig{GuildID: "g1", RootChannelID: "r1", DefaultLabel: "Lobby"}, cfg)

	cfg, ok, err = s.GetRootConfig(ctx, "g2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, cfg.DefaultLabel)

	_, ok, err = s.GetRootConfig(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutReplacesExisting(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, store.RootConfig{GuildID: "g1", RootChannelID: "r1", DefaultLabel: "Lobby"}))
	require.NoError(t, s.Put(ctx, store.RootConfig{GuildID: "g1", RootChannelID: "r9"}))

	cfg, _, err := s.GetRootConfig(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "r9", cfg.RootChannelID)
	assert.Empty(t, cfg.DefaultLabel)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPutRejectsInvalid(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	assert.Error(t, s.Put(context.Background(), store.RootConfig{GuildID: "g1"}))
}

func TestDelete(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, store.RootConfig{GuildID: "g1", RootChannelID: "r1"}))
	require.NoError(t, s.Delete(ctx, "g1"))
	assert.ErrorIs(t, s.Delete(ctx, "g1"), store.ErrNotFound)

	_, ok, err := s.GetRootConfig(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListOrdersByGuild(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	ctx := context.Background()

	for _, g := range []string{"300", "100", "200"} {
		require.NoError(t, s.Put(ctx, store.RootConfig{GuildID: g, RootChannelID: "r" + g}))
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "100", list[0].GuildID)
	assert.Equal(t, "200", list[1].GuildID)
	assert.Equal(t, "300", list[2].GuildID)
}

func TestReopenKeepsData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "eclipse.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, store.RootConfig{GuildID: "g1", RootChannelID: "r1"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	cfg, ok, err := s.GetRootConfig(ctx, "g1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "r1", cfg.RootChannelID)
}

func TestUpSection(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no markers", "CREATE TABLE t (a);", "CREATE TABLE t (a);"},
		{"up only", "-- +migrate Up\nCREATE TABLE t (a);", "\nCREATE TABLE t (a);"},
		{"up and down", "-- +migrate Up\nA;\n-- +migrate Down\nB;", "\nA;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, upSection(tt.content))
		})
	}
}

func TestApplyMigrationsRunsOnce(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"0001_extra.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE extra (id INTEGER);\n-- +migrate Down\nDROP TABLE extra;")},
		"README.md":      {Data: []byte("ignored")},
	}

	require.NoError(t, applyMigrations(ctx, s.db, fsys))
	require.NoError(t, applyMigrations(ctx, s.db, fsys))

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+migrationTable+" WHERE name = ?", "0001_extra.sql").Scan(&n))
	assert.Equal(t, 1, n)
}
