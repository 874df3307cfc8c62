package telemetry

import (
	"context"
	"time"
)

// Collector records one snapshot per control cycle.
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Snapshot captures the pipeline and controller state at one control
// cycle.
type Snapshot struct {
	Timestamp   time.Time
	HeartRate   HeartRateMetrics
	Motor       MotorMetrics
	SystemState StateMetrics
}

// Domain value objects
type HeartRateMetrics struct {
	Current  int
	Smoothed float64
	Valid    bool
}

type MotorMetrics struct {
	Duty    int
	Stopped bool
}

type StateMetrics struct {
	State         string
	TargetLow     float64
	TargetHigh    float64
	SkippedCycles uint64
}
