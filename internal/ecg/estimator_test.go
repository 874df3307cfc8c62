package ecg_test

import (
	"testing"
	"time"

	"github.com/ZXIS-dev/ZXIS-Run/internal/ecg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func beatsAt(e *ecg.Estimator, start time.Time, intervals ...time.Duration) {
	at := start
	e.OnBeat(ecg.BeatEvent{At: at})
	for _, iv := range intervals {
		at = at.Add(iv)
		e.OnBeat(ecg.BeatEvent{At: at})
	}
}

func TestEstimatorUnavailableBeforeFirstInterval(t *testing.T) {
	e := ecg.NewEstimator(5, 40, 200)

	assert.False(t, e.Current().Valid, "no estimate before any beat")

	e.OnBeat(ecg.BeatEvent{At: time.Unix(10, 0)})
	assert.False(t, e.Current().Valid, "the first beat is an anchor only")

	e.OnBeat(ecg.BeatEvent{At: time.Unix(10, 0).Add(800 * time.Millisecond)})
	est := e.Current()
	require.True(t, est.Valid, "one interval is enough for an estimate")
	assert.Equal(t, 75, est.BPM)
}

func TestEstimatorWindowMean(t *testing.T) {
	e := ecg.NewEstimator(5, 40, 200)

	// Seven intervals of 1000ms: the window holds the most recent five
	beatsAt(e, time.Unix(0, 0),
		time.Second, time.Second, time.Second, time.Second,
		time.Second, time.Second, time.Second)

	est := e.Current()
	require.True(t, est.Valid)
	assert.Equal(t, 60, est.BPM)
}

func TestEstimatorEvictsOldest(t *testing.T) {
	e := ecg.NewEstimator(3, 40, 200)

	// Window fills with 1000ms intervals, then 600ms intervals push
	// the old ones out entirely.
	beatsAt(e, time.Unix(0, 0),
		time.Second, time.Second, time.Second,
		600*time.Millisecond, 600*time.Millisecond, 600*time.Millisecond)

	est := e.Current()
	require.True(t, est.Valid)
	assert.Equal(t, 100, est.BPM, "only the newest intervals remain in the window")
}

func TestEstimatorRejectsOutOfRange(t *testing.T) {
	e := ecg.NewEstimator(5, 40, 200)

	// Establish a valid 75 BPM estimate
	beatsAt(e, time.Unix(0, 0),
		800*time.Millisecond, 800*time.Millisecond, 800*time.Millisecond,
		800*time.Millisecond, 800*time.Millisecond)
	require.Equal(t, 75, e.Current().BPM)

	// A burst of 200ms intervals drives the window mean to an
	// implausible rate; the published value must not move.
	e2 := e.Current()
	beatsAt(e, time.Unix(100, 0),
		200*time.Millisecond, 200*time.Millisecond, 200*time.Millisecond,
		200*time.Millisecond, 200*time.Millisecond)

	assert.Equal(t, e2, e.Current(), "out-of-range results never overwrite the estimate")
	assert.NotZero(t, e.Rejected())
}

func TestEstimatorNeverPublishesSpike(t *testing.T) {
	e := ecg.NewEstimator(1, 40, 200)

	beatsAt(e, time.Unix(0, 0), 800*time.Millisecond)
	require.Equal(t, 75, e.Current().BPM)

	// One 285ms interval computes to ~210 BPM; the estimate must hold
	// 75 throughout the fault and recover afterwards.
	e.OnBeat(ecg.BeatEvent{At: time.Unix(0, 0).Add(800*time.Millisecond + 285*time.Millisecond)})
	assert.Equal(t, 75, e.Current().BPM, "210 BPM must never be visible downstream")

	e.OnBeat(ecg.BeatEvent{At: time.Unix(0, 0).Add(800*time.Millisecond + 285*time.Millisecond + 800*time.Millisecond)})
	assert.Equal(t, 75, e.Current().BPM)
}
