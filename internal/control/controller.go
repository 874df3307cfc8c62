package control

import (
	"math"
	"time"

	"github.com/ZXIS-dev/ZXIS-Run/internal/ecg"
	"github.com/ZXIS-dev/ZXIS-Run/internal/errors"
	"github.com/ZXIS-dev/ZXIS-Run/internal/logger"
	"github.com/ZXIS-dev/ZXIS-Run/internal/motor"
)

// Controller keeps the smoothed heart rate inside a target band by
// issuing bounded, deadbanded proportional duty adjustments to the
// actuator. All methods must be called from the control loop goroutine;
// the actuator itself is safe for the emergency-stop path to reach from
// elsewhere.
type Controller struct {
	cfg      Config
	actuator *motor.Actuator

	state     State
	band      Band
	hasBand   bool
	hrEMA     float64
	hrSeeded  bool
	lastCycle time.Time
	skipped   uint64
}

func NewController(cfg Config, actuator *motor.Actuator) (*Controller, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if actuator == nil {
		return nil, errFactory.New(ErrNilActuator)
	}

	return &Controller{
		cfg:      cfg,
		actuator: actuator,
		state:    StateIdle,
	}, nil
}

// SetBand installs a new target band and (re)enters closed-loop
// tracking. Refused while emergency-stopped.
func (c *Controller) SetBand(band Band) error {
	errFactory := errors.New()

	if c.state == StateStopped {
		return errFactory.New(ErrStopped)
	}
	if band.Low <= 0 || band.High < band.Low {
		return errFactory.WithData(ErrInvalidBand, band)
	}

	c.band = band
	c.hasBand = true
	c.state = StateTracking
	logger.Info().Float64("low", band.Low).Float64("high", band.High).Msg("target band set")

	return nil
}

// SetTarget installs a degenerate band at a single BPM value. Used by
// the host's direct target command; tracking resumes even if a speed
// override was outstanding.
func (c *Controller) SetTarget(bpm int) error {
	return c.SetBand(Band{Low: float64(bpm), High: float64(bpm)})
}

// SetMode installs a named workout preset's band.
func (c *Controller) SetMode(mode Mode) error {
	errFactory := errors.New()

	band, ok := mode.Band()
	if !ok {
		return errFactory.WithData(ErrUnknownMode, string(mode))
	}

	return c.SetBand(band)
}

// OverrideSpeed routes an absolute duty command straight to the
// actuator and suspends closed-loop adjustment until a new target or
// mode arrives. This is an explicit operating mode, not a transparent
// pass-through: while it is active the controller reports
// StateOverride and Cycle makes no adjustments.
func (c *Controller) OverrideSpeed(duty int) (int, error) {
	errFactory := errors.New()

	if c.state == StateStopped {
		return 0, errFactory.New(ErrStopped)
	}

	applied, err := c.actuator.Apply(duty)
	if err != nil {
		return applied, err
	}

	c.state = StateOverride
	c.hasBand = false
	logger.Info().Int("duty", applied).Msg("manual speed override")

	return applied, nil
}

// EmergencyStop latches the controller and forces the actuator to
// zero. Internal state transitions even when the physical write fails.
func (c *Controller) EmergencyStop() error {
	c.state = StateStopped
	c.hasBand = false

	return c.actuator.EmergencyStop()
}

// Reset clears the emergency latch and returns to Idle. The motor
// stays at zero until a new band or override arrives.
func (c *Controller) Reset() error {
	if err := c.actuator.Resume(); err != nil {
		return err
	}

	c.state = StateIdle
	c.hasBand = false
	c.hrSeeded = false
	c.hrEMA = 0

	return nil
}

// Cycle runs one control evaluation against the latest estimate. An
// invalid or unavailable estimate skips the cycle: the last command
// stays in force and no state transition happens. Adjustments are
// rate-limited to one per configured period even if Cycle is called
// more often.
func (c *Controller) Cycle(est ecg.Estimate, now time.Time) {
	if c.state == StateStopped || c.state == StateOverride || !c.hasBand {
		return
	}

	if !est.Valid {
		c.skipped++
		logger.Debug().Uint64("skipped_cycles", c.skipped).Msg("no valid heart-rate estimate, holding command")
		return
	}

	if !c.hrSeeded {
		c.hrEMA = float64(est.BPM)
		c.hrSeeded = true
	}
	c.hrEMA = c.cfg.HRSmoothing*c.hrEMA + (1-c.cfg.HRSmoothing)*float64(est.BPM)

	if !c.lastCycle.IsZero() && now.Sub(c.lastCycle) < c.cfg.Period {
		return
	}
	c.lastCycle = now

	var delta float64
	switch {
	case c.hrEMA < c.band.Low-c.cfg.Deadband:
		delta = c.cfg.Kp * (c.band.Low - c.hrEMA)
		c.state = StateTracking
	case c.hrEMA > c.band.High+c.cfg.Deadband:
		delta = -c.cfg.Kp * (c.hrEMA - c.band.High)
		c.state = StateTracking
	default:
		c.state = StateHolding
		return
	}

	next := c.actuator.Current() + int(math.Round(delta))
	applied, err := c.actuator.Apply(next)
	if err != nil {
		// Actuation failures are retried on the next cycle; the loop
		// itself must keep running.
		logger.Error().Err(err).Int("duty", next).Msg("failed to apply duty")
		return
	}

	logger.Debug().
		Float64("bpm_ema", c.hrEMA).
		Float64("band_low", c.band.Low).
		Float64("band_high", c.band.High).
		Int("delta", int(math.Round(delta))).
		Int("duty", applied).
		Msg("control cycle")
}

// State returns the current operating state.
func (c *Controller) State() State {
	return c.state
}

// Band returns the active target band, if one is set.
func (c *Controller) Band() (Band, bool) {
	return c.band, c.hasBand
}

// Smoothed returns the EMA-smoothed heart rate the controller acts on.
func (c *Controller) Smoothed() float64 {
	return c.hrEMA
}

// SkippedCycles reports how many cycles were skipped for lack of a
// valid estimate.
func (c *Controller) SkippedCycles() uint64 {
	return c.skipped
}
