package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// LocalStore is a SQLite-backed stand-in for the S3 bucket so the pipeline
// runs without cloud credentials. Same flat keyspace, same blind-overwrite
// semantics.
type LocalStore struct {
	db *sql.DB
}

// NewLocal opens (and if needed creates) the local object table.
func NewLocal(path string) (*LocalStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS objects (
		key TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		last_modified TIMESTAMP NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create objects table: %w", err)
	}

	return &LocalStore{db: db}, nil
}

func (l *LocalStore) Put(ctx context.Context, key string, body []byte) error {
	// REPLACE mirrors the bucket's overwrite-or-create write semantics
	_, err := l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO objects (key, body, last_modified) VALUES (?, ?, ?)`,
		key, body, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (l *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := l.db.QueryRowContext(ctx,
		`SELECT body FROM objects WHERE key = ?`, key).Scan(&body)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return body, nil
}

func (l *LocalStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT key, last_modified FROM objects WHERE key LIKE ? || '%' ORDER BY key`,
		prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	defer rows.Close()

	var infos []ObjectInfo
	for rows.Next() {
		var info ObjectInfo
		if err := rows.Scan(&info.Key, &info.LastModified); err != nil {
			return nil, fmt.Errorf("scan object row: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func (l *LocalStore) Close() error { return l.db.Close() }
