package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/chatvise/chatvise/internal/profile"
	"github.com/chatvise/chatvise/store"
)

// SQLite is the default driver for development and keyword-only deployments.
// Vector search requires PostgreSQL with the pgvector extension; on SQLite the
// document retriever always takes its keyword fallback path.

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a SQLite database and ensures the schema exists.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	dsn := profile.DSN
	if dsn == "" {
		dsn = fmt.Sprintf("%s/chatvise_%s.db", profile.Data, profile.Mode)
	}
	// WAL allows concurrent readers during the background embedding runner.
	dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"

	sqliteDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", dsn)
	}

	driver := &DB{db: sqliteDB, profile: profile}
	if err := driver.applyLatestSchema(context.Background()); err != nil {
		return nil, errors.Wrap(err, "failed to apply schema")
	}

	return driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) IsInitialized(ctx context.Context) (bool, error) {
	var count int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'faq'`,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

const latestSchema = `
CREATE TABLE IF NOT EXISTS faq (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL UNIQUE,
	assistant_id TEXT NOT NULL,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	keywords TEXT NOT NULL DEFAULT '',
	enabled INTEGER NOT NULL DEFAULT 1,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_faq_assistant_id ON faq (assistant_id);

CREATE TABLE IF NOT EXISTS knowledge_file (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL UNIQUE,
	assistant_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	enabled INTEGER NOT NULL DEFAULT 1,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_knowledge_file_assistant_id ON knowledge_file (assistant_id);

CREATE TABLE IF NOT EXISTS document (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL UNIQUE,
	assistant_id TEXT NOT NULL,
	knowledge_file_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'PENDING',
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL,
	FOREIGN KEY (knowledge_file_id) REFERENCES knowledge_file (id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_document_assistant_id ON document (assistant_id);
CREATE INDEX IF NOT EXISTS idx_document_knowledge_file_id ON document (knowledge_file_id);

CREATE TABLE IF NOT EXISTS document_chunk (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id INTEGER NOT NULL,
	chunk_index INTEGER NOT NULL,
	content TEXT NOT NULL,
	heading TEXT NOT NULL DEFAULT '',
	created_ts BIGINT NOT NULL,
	FOREIGN KEY (document_id) REFERENCES document (id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_document_chunk_document_id ON document_chunk (document_id);

CREATE TABLE IF NOT EXISTS website (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uid TEXT NOT NULL UNIQUE,
	assistant_id TEXT NOT NULL,
	url TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	enabled INTEGER NOT NULL DEFAULT 1,
	last_crawled_ts BIGINT NOT NULL DEFAULT 0,
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_website_assistant_id ON website (assistant_id);

CREATE TABLE IF NOT EXISTS website_page (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	website_id INTEGER NOT NULL,
	assistant_id TEXT NOT NULL,
	url TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL DEFAULT '',
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL,
	FOREIGN KEY (website_id) REFERENCES website (id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_website_page_assistant_id ON website_page (assistant_id);
`

func (d *DB) applyLatestSchema(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, latestSchema); err != nil {
		return errors.Wrap(err, "failed to execute schema")
	}
	return nil
}
