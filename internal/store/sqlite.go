package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultPollInterval is how often SQLiteBackend checks for outside commits
const DefaultPollInterval = 500 * time.Millisecond

const createPreferencesTable = `CREATE TABLE IF NOT EXISTS preferences (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteBackend stores preferences in a SQLite database
type SQLiteBackend struct {
	db           *sql.DB
	path         string
	pollInterval time.Duration
}

// sqliteDSN builds a connection string with WAL and a busy timeout
func sqliteDSN(file string) string {
	params := make(url.Values)
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "busy_timeout(10000)")
	params.Add("_pragma", "synchronous(NORMAL)")
	return "file:" + file + "?" + params.Encode()
}

// OpenSQLiteBackend opens (and if needed creates) the database at path
func OpenSQLiteBackend(path string, pollInterval time.Duration) (*SQLiteBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("preferences database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps PRAGMA data_version meaningful between polls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(createPreferencesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create preferences table: %w", err)
	}

	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &SQLiteBackend{db: db, path: path, pollInterval: pollInterval}, nil
}

// Path returns the database file path
func (b *SQLiteBackend) Path() string { return b.path }

// Get implements Backend
func (b *SQLiteBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set implements Backend
func (b *SQLiteBackend) Set(ctx context.Context, key, value string) error {
	ts := time.Now().Unix()
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO preferences(key, value, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, ts)
	return err
}

// Close implements Backend
func (b *SQLiteBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// Changes implements Watchable. PRAGMA data_version changes whenever another
// connection commits, so polling it detects writes from other processes.
func (b *SQLiteBackend) Changes(ctx context.Context) (<-chan struct{}, error) {
	last, err := b.dataVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading data_version: %w", err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(b.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				version, err := b.dataVersion(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					continue
				}
				if version == last {
					continue
				}
				last = version
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

func (b *SQLiteBackend) dataVersion(ctx context.Context) (int64, error) {
	var version int64
	err := b.db.QueryRowContext(ctx, `PRAGMA data_version`).Scan(&version)
	return version, err
}
