package motor

import "github.com/ZXIS-dev/ZXIS-Run/internal/errors"

const (
	// Configuration Errors
	ErrInvalidLimits = errors.ErrorCode("motor_invalid_limits")
	ErrNilDriver     = errors.ErrorCode("motor_nil_driver")

	// Actuation Errors
	ErrDirectionFailed = errors.ErrorCode("motor_direction_failed")
	ErrWriteFailed     = errors.ErrorCode("motor_write_failed")
	ErrStopFailed      = errors.ErrorCode("motor_stop_failed")

	// State Errors
	ErrStopped = errors.ErrorCode("motor_emergency_stopped")
)
