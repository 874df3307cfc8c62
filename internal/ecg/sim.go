package ecg

import (
	"math"
	"time"
)

const (
	adcMidscale  = 512
	adcAmplitude = 400
)

// SimSampler generates a synthetic (non-clinical) ECG waveform at a
// fixed rate: slow baseline drift, gaussian P/QRS/T deflections and a
// small deterministic noise term, scaled to ADC units. Timestamps
// advance by exactly one sample period per call, so downstream timing
// is reproducible in tests.
type SimSampler struct {
	period time.Duration
	rate   float64
	bpm    float64
	noise  float64

	phase float64
	now   time.Time
}

func NewSimSampler(sampleRate int, bpm, noise float64) *SimSampler {
	return &SimSampler{
		period: time.Second / time.Duration(sampleRate),
		rate:   float64(sampleRate),
		bpm:    bpm,
		noise:  noise,
		now:    time.Unix(0, 0),
	}
}

// SetBPM changes the simulated heart rate for subsequent samples.
func (s *SimSampler) SetBPM(bpm float64) {
	s.bpm = bpm
}

// Next returns the next synthetic sample and advances time.
func (s *SimSampler) Next() (Sample, error) {
	s.phase += (s.bpm / 60.0) / s.rate
	if s.phase >= 1.0 {
		s.phase -= 1.0
	}
	t := s.phase

	baseline := 0.05 * math.Sin(2*math.Pi*0.33*t)

	p := 0.08 * gauss(t, 0.18, 0.03)
	q := -0.12 * gauss(t, 0.30, 0.01)
	r := 1.00 * gauss(t, 0.32, 0.008)
	sw := -0.25 * gauss(t, 0.35, 0.012)
	tw := 0.25 * gauss(t, 0.60, 0.06)

	n := s.noise * (2*fract(math.Sin(12345.678*t)*9876.543) - 1)

	value := baseline + p + q + r + sw + tw + n

	s.now = s.now.Add(s.period)

	return Sample{
		Value: adcMidscale + int(adcAmplitude*value),
		At:    s.now,
	}, nil
}

func gauss(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}

func fract(x float64) float64 { return x - math.Floor(x) }
