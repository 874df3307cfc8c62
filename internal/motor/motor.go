package motor

import (
	"sync"

	"github.com/ZXIS-dev/ZXIS-Run/internal/errors"
	"github.com/ZXIS-dev/ZXIS-Run/internal/logger"
)

// Actuator applies duty commands to a Driver under hard safety rules:
// every write is clamped into the configured limits, forward direction
// is re-asserted before every magnitude write, and an emergency stop
// latches the actuator at zero until Resume.
type Actuator struct {
	driver Driver
	limits Limits

	duty        int
	stopped     bool
	stopPending bool
	mu          sync.Mutex
}

func NewActuator(driver Driver, limits Limits) (*Actuator, error) {
	errFactory := errors.New()

	if driver == nil {
		return nil, errFactory.New(ErrNilDriver)
	}
	if limits.Min < 0 || limits.Max <= limits.Min {
		return nil, errFactory.WithData(ErrInvalidLimits, limits)
	}

	return &Actuator{
		driver: driver,
		limits: limits,
	}, nil
}

// Apply clamps the requested duty into the limits and writes it to the
// hardware. Direction is re-asserted on every write so a driver that
// retains stale direction bits can never run in reverse. While the
// emergency latch is set, Apply refuses the command and retries the
// pending physical stop instead.
func (a *Actuator) Apply(duty int) (int, error) {
	errFactory := errors.New()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		a.retryStopLocked()
		return 0, errFactory.New(ErrStopped)
	}

	duty = clamp(duty, a.limits.Min, a.limits.Max)

	if err := a.driver.SetForward(); err != nil {
		return a.duty, errFactory.Wrap(ErrDirectionFailed, err)
	}
	if err := a.driver.WriteDuty(duty); err != nil {
		return a.duty, errFactory.Wrap(ErrWriteFailed, err)
	}

	a.duty = duty

	return duty, nil
}

// EmergencyStop forces the command to zero. Internal state is latched
// stopped even when the physical write fails; the write is retried on
// every later call until it succeeds. Idempotent.
func (a *Actuator) EmergencyStop() error {
	errFactory := errors.New()

	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopped = true
	a.duty = 0

	if err := a.driver.Stop(); err != nil {
		a.stopPending = true
		logger.Warn().Err(err).Msg("physical stop failed, will retry")
		return errFactory.Wrap(ErrStopFailed, err)
	}

	a.stopPending = false

	return nil
}

func (a *Actuator) retryStopLocked() {
	if !a.stopPending {
		return
	}
	if err := a.driver.Stop(); err != nil {
		logger.Warn().Err(err).Msg("physical stop retry failed")
		return
	}
	a.stopPending = false
}

// Resume clears the emergency latch. The duty stays at zero until the
// next Apply.
func (a *Actuator) Resume() error {
	errFactory := errors.New()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopPending {
		if err := a.driver.Stop(); err != nil {
			return errFactory.Wrap(ErrStopFailed, err)
		}
		a.stopPending = false
	}

	a.stopped = false

	return nil
}

// Current returns the currently commanded duty.
func (a *Actuator) Current() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.duty
}

// Stopped reports whether the emergency latch is set.
func (a *Actuator) Stopped() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopped
}

// StopPending reports whether a physical stop write is still owed to
// the hardware.
func (a *Actuator) StopPending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopPending
}

// Limits returns the configured duty limits.
func (a *Actuator) Limits() Limits {
	return a.limits
}

// Clamp bounds a duty value into the configured limits.
func (a *Actuator) Clamp(duty int) int {
	return clamp(duty, a.limits.Min, a.limits.Max)
}

func clamp(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}

	return value
}
