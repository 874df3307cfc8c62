package motor

import (
	"errors"
	"sync"
)

var errSimStop = errors.New("simulated stop failure")

// SimDriver is an in-memory Driver for the simulate mode and tests.
// It records the last written duty and whether forward direction was
// asserted before it.
type SimDriver struct {
	mu       sync.Mutex
	duty     int
	forward  bool
	writes   int
	stops    int
	FailStop bool
}

func NewSimDriver() *SimDriver {
	return &SimDriver{}
}

func (d *SimDriver) SetForward() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.forward = true
	return nil
}

func (d *SimDriver) WriteDuty(duty int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.duty = duty
	d.writes++
	return nil
}

func (d *SimDriver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailStop {
		return errSimStop
	}
	d.duty = 0
	d.stops++
	return nil
}

// Duty returns the last written duty.
func (d *SimDriver) Duty() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.duty
}

// Forward reports whether forward direction has been asserted.
func (d *SimDriver) Forward() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.forward
}

// Stops returns how many successful stop writes happened.
func (d *SimDriver) Stops() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stops
}
