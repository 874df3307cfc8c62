package motor

// Driver abstracts the physical motor driver (PWM output plus
// direction pins on the reference hardware). Implementations must be
// safe to call repeatedly with the same values.
type Driver interface {
	// SetForward asserts the single allowed rotation direction.
	SetForward() error

	// WriteDuty applies the PWM magnitude.
	WriteDuty(duty int) error

	// Stop drops the output to zero immediately.
	Stop() error
}

// Limits bounds the duty range: Min is the smallest command that
// produces physical motion, Max the hardware ceiling.
type Limits struct {
	Min, Max int
}
