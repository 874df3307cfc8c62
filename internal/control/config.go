package control

import (
	"time"

	"github.com/ZXIS-dev/ZXIS-Run/internal/errors"
)

type Config struct {
	// Period is the control cycle length; adjustments happen at most
	// once per period regardless of how often Cycle is called.
	Period time.Duration

	// Kp converts BPM error into duty change.
	Kp float64

	// Deadband widens the target band by this many BPM on each side
	// before any corrective action is taken.
	Deadband float64

	// HRSmoothing is the EMA weight kept on the previous smoothed BPM.
	HRSmoothing float64
}

func DefaultConfig() Config {
	return Config{
		Period:      time.Second,
		Kp:          3.5,
		Deadband:    1.5,
		HRSmoothing: 0.6,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Period <= 0 {
		return errFactory.New(ErrInvalidPeriod)
	}
	if c.Kp <= 0 {
		return errFactory.New(ErrInvalidGain)
	}
	if c.Deadband < 0 {
		return errFactory.New(ErrInvalidDeadband)
	}
	if c.HRSmoothing < 0 || c.HRSmoothing >= 1 {
		return errFactory.New(ErrInvalidSmooth)
	}

	return nil
}
