package ecg

import "time"

// Detector turns the conditioned envelope into beat events. The
// decision threshold follows the long-run envelope average and a beat
// is registered only on the rising-edge crossing, so one elevated
// plateau produces one event. Crossings inside the refractory window
// are ignored entirely.
type Detector struct {
	thresholdAlpha float64
	gain           float64
	refractory     time.Duration

	thresholdEnv float64
	above        bool
	start        time.Time
	lastBeat     time.Time
}

// warmup is the initial settling window. Until the threshold EMA has
// seen this much signal, crossings are not trusted as beats.
const warmup = time.Second

func NewDetector(thresholdAlpha, gain float64, refractory time.Duration) *Detector {
	return &Detector{
		thresholdAlpha: thresholdAlpha,
		gain:           gain,
		refractory:     refractory,
	}
}

// Process folds one envelope value into the adaptive threshold and
// reports whether an accepted beat occurred at the given time.
func (d *Detector) Process(envelope float64, at time.Time) (BeatEvent, bool) {
	if d.start.IsZero() {
		d.start = at
	}

	// The threshold tracks the long-run average envelope;
	// thresholdAlpha weighs the incoming value.
	d.thresholdEnv = (1-d.thresholdAlpha)*d.thresholdEnv + d.thresholdAlpha*envelope
	threshold := d.thresholdEnv * d.gain

	nowAbove := envelope > threshold
	crossed := nowAbove && !d.above
	d.above = nowAbove

	if !crossed {
		return BeatEvent{}, false
	}

	if at.Sub(d.start) < warmup {
		return BeatEvent{}, false
	}

	if !d.lastBeat.IsZero() && at.Sub(d.lastBeat) < d.refractory {
		return BeatEvent{}, false
	}

	d.lastBeat = at

	return BeatEvent{At: at}, true
}

// LastBeat returns the time of the most recently accepted beat.
func (d *Detector) LastBeat() time.Time {
	return d.lastBeat
}
