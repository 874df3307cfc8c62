package control

// State is the controller's operating state.
type State string

const (
	// StateIdle means no target band is set; the motor holds its
	// current command.
	StateIdle State = "idle"

	// StateTracking means the smoothed heart rate is outside the band
	// and the command is being adjusted toward it.
	StateTracking State = "tracking"

	// StateHolding means the heart rate sits inside the deadbanded
	// band; the command is left untouched.
	StateHolding State = "holding"

	// StateOverride means an explicit speed command is outstanding;
	// closed-loop adjustment is suspended until a new target arrives.
	StateOverride State = "override"

	// StateStopped is the emergency-stop latch. Terminal until Reset.
	StateStopped State = "emergency_stopped"
)

// Band is the target heart-rate band in BPM.
type Band struct {
	Low, High float64
}

// Mode is a named workout preset carrying its own target band.
type Mode string

const (
	ModeDiet     Mode = "diet"
	ModeTraining Mode = "training"
)

// Band returns the preset's target band.
func (m Mode) Band() (Band, bool) {
	switch m {
	case ModeDiet:
		return Band{Low: 60, High: 70}, true
	case ModeTraining:
		return Band{Low: 70, High: 80}, true
	default:
		return Band{}, false
	}
}
