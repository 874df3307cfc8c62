package telemetry

import (
	"database/sql"

	"github.com/ZXIS-dev/ZXIS-Run/internal/errors"
)

// initSchema initializes the database schema for telemetry data
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS telemetry (
            timestamp INTEGER PRIMARY KEY,
            bpm INTEGER,
            bpm_smoothed REAL,
            bpm_valid INTEGER,
            duty INTEGER,
            motor_stopped INTEGER,
            state TEXT,
            target_low REAL,
            target_high REAL,
            skipped_cycles INTEGER
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrSchemaInitFailed, err)
	}

	return nil
}
