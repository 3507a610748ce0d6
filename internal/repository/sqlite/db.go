package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const busyTimeout = 5 * time.Second

// Open opens (or creates) a sqlite database at the given path and ensures directories exist.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)",
		path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// a single connection serializes transactions, which is what the
	// completion flow relies on
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	return db, nil
}

// WithTx runs fn inside a transaction and commits when fn returns nil.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Snapshot writes a consistent copy of the database to dest.
func Snapshot(ctx context.Context, db *sql.DB, dest string) error {
	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, dest); err != nil {
		return fmt.Errorf("vacuum into %s: %w", dest, err)
	}
	return nil
}

// column is added by ensureColumns when an older table lacks it.
type column struct {
	name string
	ddl  string
}

// ensureColumns upgrades tables created by earlier releases, including the
// schema of the original chat bot, by adding missing columns.
func ensureColumns(ctx context.Context, db *sql.DB, table string, columns ...column) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return fmt.Errorf("describe %s table: %w", table, err)
	}

	existing := map[string]struct{}{}
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notnull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			rows.Close()
			return fmt.Errorf("scan pragma table info: %w", err)
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate pragma table info: %w", err)
	}
	// release the only connection before altering the table
	rows.Close()

	for _, col := range columns {
		if _, ok := existing[col.name]; ok {
			continue
		}
		stmt := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, col.name, col.ddl)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add column %s.%s: %w", table, col.name, err)
		}
	}
	return nil
}

// storedTime scans DATETIME columns as well as timestamps kept as text in
// columns declared TEXT by older schemas.
type storedTime struct {
	Time  time.Time
	Valid bool
}

var storedTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

func (s *storedTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*s = storedTime{}
		return nil
	case time.Time:
		*s = storedTime{Time: v, Valid: true}
		return nil
	case int64:
		*s = storedTime{Time: time.Unix(v, 0).UTC(), Valid: true}
		return nil
	case []byte:
		return s.parse(string(v))
	case string:
		return s.parse(v)
	}
	return fmt.Errorf("unsupported time value of type %T", value)
}

func (s *storedTime) parse(text string) error {
	text = strings.TrimSpace(text)
	// time.Time.String appends the monotonic clock reading
	if i := strings.Index(text, " m="); i >= 0 {
		text = text[:i]
	}
	if text == "" {
		*s = storedTime{}
		return nil
	}
	for _, layout := range storedTimeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			*s = storedTime{Time: t, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("unrecognized time %q", text)
}

func isConstraintError(err error, kind string) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), kind)
}
