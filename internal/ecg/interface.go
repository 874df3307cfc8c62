package ecg

import "time"

// Sample is one raw reading from the analog front-end, in ADC units
// (0..1023), stamped with its acquisition time.
type Sample struct {
	Value int
	At    time.Time
}

// BeatEvent is one detected R-peak.
type BeatEvent struct {
	At time.Time
}

// Estimate is the published heart-rate figure. Valid stays false until
// at least one RR-interval has been observed; once set, BPM only ever
// holds the last in-range value.
type Estimate struct {
	BPM   int
	Valid bool
}

// Sampler abstracts the acquisition front-end so tests and the
// simulate mode can substitute a deterministic source.
type Sampler interface {
	Next() (Sample, error)
}

// BeatObserver receives accepted beats in emission order.
type BeatObserver func(BeatEvent)

// EstimateObserver receives estimate updates in emission order.
type EstimateObserver func(Estimate)
