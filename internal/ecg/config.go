package ecg

import (
	"time"

	"github.com/ZXIS-dev/ZXIS-Run/internal/errors"
)

type Config struct {
	BaselineAlpha  float64
	EnvelopeAlpha  float64
	ThresholdAlpha float64
	ThresholdGain  float64
	Refractory     time.Duration
	RRWindow       int
	BPMMin         int
	BPMMax         int
}

func DefaultConfig() Config {
	return Config{
		BaselineAlpha:  0.995,
		EnvelopeAlpha:  0.3,
		ThresholdAlpha: 0.01,
		ThresholdGain:  1.5,
		Refractory:     250 * time.Millisecond,
		RRWindow:       5,
		BPMMin:         40,
		BPMMax:         200,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	for _, alpha := range []float64{c.BaselineAlpha, c.EnvelopeAlpha, c.ThresholdAlpha} {
		if alpha < 0 || alpha >= 1 {
			return errFactory.New(ErrInvalidAlpha)
		}
	}
	if c.ThresholdGain <= 0 {
		return errFactory.New(ErrInvalidGain)
	}
	if c.Refractory <= 0 {
		return errFactory.New(ErrInvalidRefractory)
	}
	if c.RRWindow <= 0 {
		return errFactory.New(ErrInvalidWindow)
	}
	if c.BPMMin <= 0 || c.BPMMax <= c.BPMMin {
		return errFactory.New(ErrInvalidBPMRange)
	}

	return nil
}
