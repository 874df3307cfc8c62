package ecg

import "math"

// Conditioner removes baseline wander from the raw signal and tracks a
// smoothed envelope of the remaining AC energy. The baseline EMA adapts
// slower than the cardiac frequency so slow drift and motion artifact
// are subtracted while the R-peak energy passes through.
type Conditioner struct {
	baselineAlpha float64
	envelopeAlpha float64

	baseline float64
	envelope float64
	primed   bool
}

func NewConditioner(baselineAlpha, envelopeAlpha float64) *Conditioner {
	return &Conditioner{
		baselineAlpha: baselineAlpha,
		envelopeAlpha: envelopeAlpha,
	}
}

// Process folds one raw sample into the EMA state and returns the
// detrended value and the updated envelope.
func (c *Conditioner) Process(raw int) (detrended, envelope float64) {
	if !c.primed {
		// Seed the baseline so the first sample's DC level does not
		// register as a huge deflection.
		c.baseline = float64(raw)
		c.primed = true
	}

	c.baseline = c.baselineAlpha*c.baseline + (1-c.baselineAlpha)*float64(raw)
	detrended = float64(raw) - c.baseline

	c.envelope = c.envelopeAlpha*c.envelope + (1-c.envelopeAlpha)*math.Abs(detrended)

	return detrended, c.envelope
}

// Envelope returns the current envelope without consuming a sample.
func (c *Conditioner) Envelope() float64 {
	return c.envelope
}
