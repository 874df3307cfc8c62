package ecg

import (
	"math"
	"time"
)

// Estimator converts consecutive beats into a stable BPM figure.
// RR-intervals go into a fixed-capacity ring buffer; once full, the
// newest interval evicts the oldest. Results outside the configured
// physiological range are discarded and the previous estimate remains
// in force.
type Estimator struct {
	window []int
	idx    int
	filled bool

	bpmMin int
	bpmMax int

	prevBeat time.Time
	bpm      int
	valid    bool
	rejected uint64
}

func NewEstimator(window, bpmMin, bpmMax int) *Estimator {
	return &Estimator{
		window: make([]int, window),
		bpmMin: bpmMin,
		bpmMax: bpmMax,
	}
}

// OnBeat consumes one accepted beat. The first beat is a timestamp
// anchor only; every later beat contributes one RR-interval.
func (e *Estimator) OnBeat(ev BeatEvent) {
	if e.prevBeat.IsZero() {
		e.prevBeat = ev.At
		return
	}

	rr := int(ev.At.Sub(e.prevBeat) / time.Millisecond)
	e.prevBeat = ev.At
	e.push(rr)
}

func (e *Estimator) push(rr int) {
	e.window[e.idx] = rr
	e.idx++
	if e.idx >= len(e.window) {
		e.idx = 0
		e.filled = true
	}

	n := e.idx
	if e.filled {
		n = len(e.window)
	}

	sum := 0
	for i := 0; i < n; i++ {
		sum += e.window[i]
	}
	if sum <= 0 {
		return
	}

	mean := float64(sum) / float64(n)
	bpm := int(math.Round(60000 / mean))

	if bpm < e.bpmMin || bpm > e.bpmMax {
		e.rejected++
		return
	}

	e.bpm = bpm
	e.valid = true
}

// Current returns the last known good estimate. Valid is false until
// the first in-range BPM has been computed.
func (e *Estimator) Current() Estimate {
	return Estimate{BPM: e.bpm, Valid: e.valid}
}

// Rejected reports how many computed values fell outside the valid
// range and were dropped.
func (e *Estimator) Rejected() uint64 {
	return e.rejected
}
