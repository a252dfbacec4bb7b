package utils

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// JSONB represents a JSONB column type for PostgreSQL.
type JSONB []byte

// Value implements driver.Valuer interface for JSONB.
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner interface for JSONB.
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = JSONB(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONB", value)
	}
	return nil
}

// SetupDatabase creates the connection pool and ensures the schema exists.
func SetupDatabase(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Pool sized for a single bot process: short bursty queries driven by
	// gateway events and timer callbacks.
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 45 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second
	config.ConnConfig.RuntimeParams = map[string]string{
		"application_name":  "wzyss-giveaway-bot",
		"timezone":          "UTC",
		"statement_timeout": "30s",
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	conn.Release()

	if err := createGuildDocumentsTable(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// createGuildDocumentsTable creates the guild_documents table if it does not exist.
func createGuildDocumentsTable(ctx context.Context, pool *pgxpool.Pool) error {
	query := `CREATE TABLE IF NOT EXISTS guild_documents (
		guild_id TEXT NOT NULL,
		namespace TEXT NOT NULL,
		doc JSONB NOT NULL DEFAULT '{}'::jsonb,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (guild_id, namespace)
	);
	CREATE INDEX IF NOT EXISTS idx_guild_documents_namespace ON guild_documents(namespace);`
	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create guild_documents table: %w", err)
	}
	return nil
}

// GuildDocs is a namespaced per-guild JSON document store over Postgres: one
// whole document per guild per namespace, read-through cached. It satisfies
// the giveaway package's DocumentStore interface.
type GuildDocs struct {
	pool  *pgxpool.Pool
	cache *DocumentCache
}

// NewGuildDocs wraps a pool with an optional document cache (nil disables
// caching).
func NewGuildDocs(pool *pgxpool.Pool, cache *DocumentCache) *GuildDocs {
	return &GuildDocs{pool: pool, cache: cache}
}

// Get unmarshals the guild's document into out. A guild with no document yet
// leaves out untouched and returns nil.
func (d *GuildDocs) Get(ctx context.Context, guildID, namespace string, out any) error {
	if d.cache != nil {
		if raw, ok := d.cache.Get(guildID, namespace); ok {
			return json.Unmarshal(raw, out)
		}
	}

	var raw JSONB
	query := `SELECT doc FROM guild_documents WHERE guild_id = $1 AND namespace = $2`
	err := d.pool.QueryRow(ctx, query, guildID, namespace).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get document %s/%s: %w", guildID, namespace, err)
	}

	if d.cache != nil {
		d.cache.Set(guildID, namespace, raw)
	}
	return json.Unmarshal(raw, out)
}

// Set replaces the guild's document wholesale.
func (d *GuildDocs) Set(ctx context.Context, guildID, namespace string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s/%s: %w", guildID, namespace, err)
	}

	query := `INSERT INTO guild_documents (guild_id, namespace, doc, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (guild_id, namespace)
		DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`
	if _, err := d.pool.Exec(ctx, query, guildID, namespace, JSONB(raw)); err != nil {
		return fmt.Errorf("failed to set document %s/%s: %w", guildID, namespace, err)
	}

	if d.cache != nil {
		d.cache.Set(guildID, namespace, raw)
	}
	return nil
}
