package ecg

import "github.com/ZXIS-dev/ZXIS-Run/internal/errors"

const (
	// Configuration Errors
	ErrInvalidAlpha      = errors.ErrorCode("ecg_invalid_alpha")
	ErrInvalidGain       = errors.ErrorCode("ecg_invalid_gain")
	ErrInvalidRefractory = errors.ErrorCode("ecg_invalid_refractory")
	ErrInvalidWindow     = errors.ErrorCode("ecg_invalid_window")
	ErrInvalidBPMRange   = errors.ErrorCode("ecg_invalid_bpm_range")

	// Acquisition Errors
	ErrSamplerClosed = errors.ErrorCode("ecg_sampler_closed")
	ErrReadFailed    = errors.ErrorCode("ecg_read_failed")
)
