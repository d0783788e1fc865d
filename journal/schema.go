package journal

import (
	"database/sql"
	"fmt"
)

// Schema creates the operation log. Timestamps are unix milliseconds.
const Schema = `
CREATE TABLE IF NOT EXISTS operation_log (
	entry_id        TEXT PRIMARY KEY,
	timestamp       INTEGER NOT NULL,
	tool            TEXT NOT NULL,
	presentation_id TEXT NOT NULL DEFAULT '',
	transport       TEXT NOT NULL DEFAULT '',
	session_id      TEXT NOT NULL DEFAULT '',
	parameters      TEXT NOT NULL DEFAULT '',
	result          TEXT NOT NULL DEFAULT '',
	error_message   TEXT NOT NULL DEFAULT '',
	duration_ms     INTEGER NOT NULL DEFAULT 0,
	status          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_operation_log_ts ON operation_log(timestamp);
CREATE INDEX IF NOT EXISTS idx_operation_log_tool ON operation_log(tool, timestamp);
CREATE INDEX IF NOT EXISTS idx_operation_log_presentation ON operation_log(presentation_id, timestamp);
`

// Init creates the journal tables if they do not exist.
func Init(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("journal: init schema: %w", err)
	}
	return nil
}
