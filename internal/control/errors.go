package control

import "github.com/ZXIS-dev/ZXIS-Run/internal/errors"

const (
	// Configuration Errors
	ErrInvalidPeriod   = errors.ErrorCode("control_invalid_period")
	ErrInvalidGain     = errors.ErrorCode("control_invalid_gain")
	ErrInvalidDeadband = errors.ErrorCode("control_invalid_deadband")
	ErrInvalidSmooth   = errors.ErrorCode("control_invalid_smoothing")
	ErrNilActuator     = errors.ErrorCode("control_nil_actuator")

	// Command Errors
	ErrInvalidBand = errors.ErrorCode("control_invalid_band")
	ErrUnknownMode = errors.ErrorCode("control_unknown_mode")
	ErrStopped     = errors.ErrorCode("control_emergency_stopped")
)
