package protocol

// Kind discriminates inbound host commands.
type Kind int

const (
	// KindTarget sets the target heart rate directly (a degenerate
	// band), resuming closed-loop control.
	KindTarget Kind = iota

	// KindSpeed sets an absolute motor command, entering the manual
	// override mode.
	KindSpeed

	// KindStop is the emergency stop.
	KindStop

	// KindMode selects a named workout preset.
	KindMode
)

func (k Kind) String() string {
	switch k {
	case KindTarget:
		return "target"
	case KindSpeed:
		return "speed"
	case KindStop:
		return "stop"
	case KindMode:
		return "mode"
	default:
		return "unknown"
	}
}

// Command is one parsed host command.
type Command struct {
	Kind   Kind
	Target int
	Speed  float64
	Mode   string
}
