package telemetry

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"github.com/ZXIS-dev/ZXIS-Run/internal/errors"
	"github.com/ZXIS-dev/ZXIS-Run/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

type Repository interface {
	Store(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRepository(cfg Config) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	logger.Debug().Msgf("Initializing telemetry repository at: %s", cfg.DBPath)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	return &sqliteRepository{
		db: db,
	}, nil
}

func (r *sqliteRepository) Store(ctx context.Context, snapshot *Snapshot) error {
	errFactory := errors.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO telemetry (
            timestamp, bpm, bpm_smoothed, bpm_valid,
            duty, motor_stopped,
            state, target_low, target_high, skipped_cycles
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(timestamp) DO UPDATE SET
            bpm = excluded.bpm,
            bpm_smoothed = excluded.bpm_smoothed,
            bpm_valid = excluded.bpm_valid,
            duty = excluded.duty,
            motor_stopped = excluded.motor_stopped,
            state = excluded.state,
            target_low = excluded.target_low,
            target_high = excluded.target_high,
            skipped_cycles = excluded.skipped_cycles
    `,
		snapshot.Timestamp.Unix(),
		snapshot.HeartRate.Current,
		snapshot.HeartRate.Smoothed,
		boolToInt(snapshot.HeartRate.Valid),
		snapshot.Motor.Duty,
		boolToInt(snapshot.Motor.Stopped),
		snapshot.SystemState.State,
		snapshot.SystemState.TargetLow,
		snapshot.SystemState.TargetHigh,
		snapshot.SystemState.SkippedCycles,
	)
	if err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	errFactory := errors.New()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}
	return nil
}
