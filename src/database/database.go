package database

import (
	"database/sql"
	"encoding/json"
	stdlog "log"

	"github.com/username/etsyexporter/src/logger"
	"github.com/username/etsyexporter/src/models"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS extraction_runs (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		source_name TEXT,
		order_count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS extracted_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		order_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		payload TEXT NOT NULL,
		FOREIGN KEY(run_id) REFERENCES extraction_runs(id)
	);
	CREATE INDEX IF NOT EXISTS idx_extracted_records_run ON extracted_records(run_id, position);

	CREATE TABLE IF NOT EXISTS export_templates (
		name TEXT PRIMARY KEY,
		field_keys TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := DB.Exec(createTableStatement); err != nil {
		stdlog.Fatalf("failed to create database tables: %v", err)
	}

	seedDefaultTemplate()

	logger.L.Info("Database initialized", "databasePath", databasePath)
}

// seedDefaultTemplate inserts the default export template on first run;
// an operator-edited default is left alone.
func seedDefaultTemplate() {
	keys, err := json.Marshal(models.DefaultFieldKeys)
	if err != nil {
		stdlog.Fatalf("failed to marshal default template keys: %v", err)
	}
	_, err = DB.Exec(
		`INSERT INTO export_templates (name, field_keys) VALUES ('default', ?)
		 ON CONFLICT(name) DO NOTHING`, string(keys))
	if err != nil {
		stdlog.Fatalf("failed to seed default export template: %v", err)
	}
}
