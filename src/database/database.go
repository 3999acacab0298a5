package database

import (
	"database/sql"
	stdlog "log"

	_ "modernc.org/sqlite"
)

var DB *sql.DB

// InitDB opens the sqlite database and ensures the rate cache schema exists.
func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS rate_cache (
		cache_key TEXT PRIMARY KEY,
		rates_json TEXT NOT NULL,
		fetched_at INTEGER NOT NULL
	);`

	if _, err := DB.Exec(createTableStatement); err != nil {
		stdlog.Fatalf("failed to create rate_cache table: %v", err)
	}
}
