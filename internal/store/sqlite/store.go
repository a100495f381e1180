// Package sqlite stores guild root configs in a SQLite database using the
// pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"eclipse/internal/store"
	"eclipse/internal/store/sqlite/migrations"
	"eclipse/pkg/logging"
)

// Store persists root configs in the autochannels table.
type Store struct {
	db *sql.DB
}

var _ store.AdminStore = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies the
// embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logging.Info("ConfigStore", "Opened root config database %s", path)
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// GetRootConfig implements store.RootConfigStore.
func (s *Store) GetRootConfig(ctx context.Context, guildID string) (store.RootConfig, bool, error) {
	var (
		cfg         store.RootConfig
		defaultName sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT guild_id, root_channel_id, default_name FROM autochannels WHERE guild_id = ?`,
		guildID,
	).Scan(&cfg.GuildID, &cfg.RootChannelID, &defaultName)
	if errors.Is(err, sql.ErrNoRows) {
		return store.RootConfig{}, false, nil
	}
	if err != nil {
		return store.RootConfig{}, false, fmt.Errorf("get root config of guild %s: %w", guildID, err)
	}
	cfg.DefaultLabel = defaultName.String
	return cfg, true, nil
}

// Put inserts or replaces a guild's root config. An empty default label is
// stored as NULL.
func (s *Store) Put(ctx context.Context, cfg store.RootConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid root config: %w", err)
	}
	defaultName := sql.NullString{String: cfg.DefaultLabel, Valid: cfg.DefaultLabel != ""}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO autochannels (guild_id, root_channel_id, default_name, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(guild_id) DO UPDATE SET
		   root_channel_id = excluded.root_channel_id,
		   default_name = excluded.default_name,
		   updated_at = excluded.updated_at`,
		cfg.GuildID, cfg.RootChannelID, defaultName, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put root config of guild %s: %w", cfg.GuildID, err)
	}
	return nil
}

// Delete removes a guild's root config.
func (s *Store) Delete(ctx context.Context, guildID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM autochannels WHERE guild_id = ?`, guildID)
	if err != nil {
		return fmt.Errorf("delete root config of guild %s: %w", guildID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete root config of guild %s: %w", guildID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: guild %s", store.ErrNotFound, guildID)
	}
	return nil
}

// List returns every root config ordered by guild id.
func (s *Store) List(ctx context.Context) ([]store.RootConfig, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT guild_id, root_channel_id, default_name FROM autochannels ORDER BY guild_id`)
	if err != nil {
		return nil, fmt.Errorf("list root configs: %w", err)
	}
	defer rows.Close()

	var out []store.RootConfig
	for rows.Next() {
		var (
			cfg         store.RootConfig
			defaultName sql.NullString
		)
		if err := rows.Scan(&cfg.GuildID, &cfg.RootChannelID, &defaultName); err != nil {
			return nil, fmt.Errorf("scan root config: %w", err)
		}
		cfg.DefaultLabel = defaultName.String
		out = append(out, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list root configs: %w", err)
	}
	return out, nil
}
