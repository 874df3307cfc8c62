package protocol

import (
	"fmt"
	"io"
	"sync"

	"github.com/ZXIS-dev/ZXIS-Run/internal/logger"
)

// Host-side command lines, used by the thin client and in round-trip
// tests.

// EncodeTarget builds the line that sets the target heart rate.
func EncodeTarget(bpm int) string {
	return fmt.Sprintf("T:%d\n", bpm)
}

// EncodeSpeed builds the line that sets an absolute motor command.
func EncodeSpeed(speed float64) string {
	return fmt.Sprintf("S:%.1f\n", speed)
}

// EncodeStop builds the emergency-stop line.
func EncodeStop() string {
	return "STOP\n"
}

// EncodeMode builds the line that selects a workout preset.
func EncodeMode(mode string) string {
	return fmt.Sprintf("MODE:%s\n", mode)
}

// Device-side telemetry lines.

// EncodeBPM builds the heart-rate telemetry line.
func EncodeBPM(bpm int) string {
	return fmt.Sprintf("BPM:%d\n", bpm)
}

// EncodeSPD builds the motor-speed telemetry line.
func EncodeSPD(speed float64) string {
	return fmt.Sprintf("SPD:%.1f\n", speed)
}

// Emitter writes telemetry lines to the host transport. Writes are
// best-effort: a failed or missing transport never blocks the control
// loop. SetWriter may be called from the connection goroutine while
// the control loop emits, so the writer is mutex-guarded.
type Emitter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// SetWriter swaps the underlying transport, e.g. on reconnect. Pass
// nil to detach.
func (e *Emitter) SetWriter(w io.Writer) {
	e.mu.Lock()
	e.w = w
	e.mu.Unlock()
}

// EmitBPM sends the current heart-rate estimate.
func (e *Emitter) EmitBPM(bpm int) {
	e.emit(EncodeBPM(bpm))
}

// EmitSpeed sends the current motor command.
func (e *Emitter) EmitSpeed(speed float64) {
	e.emit(EncodeSPD(speed))
}

func (e *Emitter) emit(line string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.w == nil {
		return
	}
	if _, err := io.WriteString(e.w, line); err != nil {
		logger.Debug().Err(err).Msg("telemetry write failed")
	}
}
