package history

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Removal is one row removed by a cleanup run.
type Removal struct {
	RowID       string
	DatabaseURL string
	Title       string
	CreatedAt   time.Time
	RemovedAt   time.Time
}

var dbInstance *sql.DB

// DefaultPath is <user cache dir>/notion-cleaner/history.db, falling back
// to the temp dir when no cache dir is known.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "notion-cleaner", "history.db")
}

func Init(dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database at %s: %w", dbPath, err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS removal_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		row_id TEXT NOT NULL,
		database_url TEXT NOT NULL,
		title TEXT,
		created_at INTEGER,
		removed_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS removal_log_database ON removal_log (database_url);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	Close()
	dbInstance = db
	return nil
}

func Close() {
	if dbInstance != nil {
		dbInstance.Close()
		dbInstance = nil
	}
}

// Enabled reports whether Init succeeded.
func Enabled() bool { return dbInstance != nil }

// RecordRemoval logs a removed row. Failures are logged, not returned: the
// row is already gone and the run should go on.
func RecordRemoval(r Removal) {
	if dbInstance == nil {
		return
	}
	if r.RemovedAt.IsZero() {
		r.RemovedAt = time.Now()
	}
	_, err := dbInstance.Exec(`
		INSERT INTO removal_log (row_id, database_url, title, created_at, removed_at)
		VALUES (?, ?, ?, ?, ?)
	`, r.RowID, r.DatabaseURL, r.Title, nullMillis(r.CreatedAt), r.RemovedAt.UnixMilli())

	if err != nil {
		log.Printf("History Write Error: %v", err)
	}
}

// ListRemovals returns the newest removals first. An empty databaseURL
// lists every database; limit <= 0 means no limit.
func ListRemovals(databaseURL string, limit int) ([]Removal, error) {
	if dbInstance == nil {
		return nil, fmt.Errorf("history database not initialized")
	}

	query := "SELECT row_id, database_url, title, created_at, removed_at FROM removal_log"
	var args []any
	if databaseURL != "" {
		query += " WHERE database_url = ?"
		args = append(args, databaseURL)
	}
	query += " ORDER BY removed_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := dbInstance.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Removal
	for rows.Next() {
		var r Removal
		var title sql.NullString
		var created sql.NullInt64
		var removed int64
		if err := rows.Scan(&r.RowID, &r.DatabaseURL, &title, &created, &removed); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		r.Title = title.String
		r.RemovedAt = time.UnixMilli(removed)
		if created.Valid {
			r.CreatedAt = time.UnixMilli(created.Int64)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ResetHistory clears the log for one database, or everything when
// databaseURL is empty, and returns the number of entries removed.
func ResetHistory(databaseURL string) (int64, error) {
	if dbInstance == nil {
		return 0, fmt.Errorf("history database not initialized")
	}

	var res sql.Result
	var err error
	if databaseURL != "" {
		res, err = dbInstance.Exec("DELETE FROM removal_log WHERE database_url = ?", databaseURL)
	} else {
		res, err = dbInstance.Exec("DELETE FROM removal_log")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to reset history: %w", err)
	}
	return res.RowsAffected()
}

func nullMillis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
