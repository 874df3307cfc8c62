package protocol_test

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/ZXIS-dev/ZXIS-Run/internal/logger"
	"github.com/ZXIS-dev/ZXIS-Run/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(false, false, true)
	os.Exit(m.Run())
}

func TestDecoderParsesCommands(t *testing.T) {
	d := protocol.NewDecoder(500)

	cmds := d.Feed([]byte("T:150\nS:120.5\nSTOP\nMODE:diet\n"))
	require.Len(t, cmds, 4)

	assert.Equal(t, protocol.KindTarget, cmds[0].Kind)
	assert.Equal(t, 150, cmds[0].Target)

	assert.Equal(t, protocol.KindSpeed, cmds[1].Kind)
	assert.InDelta(t, 120.5, cmds[1].Speed, 1e-9)

	assert.Equal(t, protocol.KindStop, cmds[2].Kind)

	assert.Equal(t, protocol.KindMode, cmds[3].Kind)
	assert.Equal(t, "diet", cmds[3].Mode)
}

func TestDecoderReassemblesSplitInput(t *testing.T) {
	d := protocol.NewDecoder(500)

	// "T:1" then "50\n" is one command, not two
	cmds := d.Feed([]byte("T:1"))
	assert.Empty(t, cmds, "no terminator yet, nothing dispatched")

	cmds = d.Feed([]byte("50\n"))
	require.Len(t, cmds, 1)
	assert.Equal(t, protocol.KindTarget, cmds[0].Kind)
	assert.Equal(t, 150, cmds[0].Target)
}

func TestDecoderHandlesBatchedInput(t *testing.T) {
	d := protocol.NewDecoder(500)

	cmds := d.Feed([]byte("T:140\nT:1"))
	require.Len(t, cmds, 1)
	assert.Equal(t, 140, cmds[0].Target)

	cmds = d.Feed([]byte("45\nSTOP\n"))
	require.Len(t, cmds, 2)
	assert.Equal(t, 145, cmds[0].Target)
	assert.Equal(t, protocol.KindStop, cmds[1].Kind)
}

func TestDecoderNormalizesCRLF(t *testing.T) {
	d := protocol.NewDecoder(500)

	cmds := d.Feed([]byte("T:150\r\nSTOP\r\n"))
	require.Len(t, cmds, 2)
	assert.Equal(t, 150, cmds[0].Target)
	assert.Equal(t, protocol.KindStop, cmds[1].Kind)
}

func TestDecoderDropsMalformedPayloads(t *testing.T) {
	d := protocol.NewDecoder(500)

	cmds := d.Feed([]byte("T:abc\nS:x.y\nT:\nhello world\n\nT:90\n"))
	require.Len(t, cmds, 1, "only the well-formed command survives")
	assert.Equal(t, 90, cmds[0].Target)
}

func TestDecoderCapsUnterminatedLine(t *testing.T) {
	d := protocol.NewDecoder(500)

	// A pathological stream with no terminator must not grow the
	// buffer without limit, and must not produce commands.
	junk := []byte(strings.Repeat("x", 200))
	for i := 0; i < 100; i++ {
		assert.Empty(t, d.Feed(junk))
	}
	assert.NotZero(t, d.Dropped())

	// The decoder recovers at the next terminator
	cmds := d.Feed([]byte("\nT:150\n"))
	require.Len(t, cmds, 1)
	assert.Equal(t, 150, cmds[0].Target)
}

func TestDecoderOversizedLineIsNotParsedInPieces(t *testing.T) {
	d := protocol.NewDecoder(10)

	// The discarded tail contains what looks like a command; none of
	// it may dispatch.
	cmds := d.Feed([]byte("xxxxxxxxxxxxxT:150\n"))
	assert.Empty(t, cmds)

	cmds = d.Feed([]byte("T:80\n"))
	require.Len(t, cmds, 1)
	assert.Equal(t, 80, cmds[0].Target)
}

func TestRoundTrip(t *testing.T) {
	d := protocol.NewDecoder(500)

	cmds := d.Feed([]byte(protocol.EncodeTarget(150)))
	require.Len(t, cmds, 1)
	assert.Equal(t, protocol.KindTarget, cmds[0].Kind)
	assert.Equal(t, 150, cmds[0].Target)

	cmds = d.Feed([]byte(protocol.EncodeSpeed(120.5)))
	require.Len(t, cmds, 1)
	assert.InDelta(t, 120.5, cmds[0].Speed, 1e-9)

	cmds = d.Feed([]byte(protocol.EncodeStop()))
	require.Len(t, cmds, 1)
	assert.Equal(t, protocol.KindStop, cmds[0].Kind)

	cmds = d.Feed([]byte(protocol.EncodeMode("training")))
	require.Len(t, cmds, 1)
	assert.Equal(t, "training", cmds[0].Mode)
}

func TestTelemetryLines(t *testing.T) {
	assert.Equal(t, "BPM:72\n", protocol.EncodeBPM(72))
	assert.Equal(t, "SPD:120.0\n", protocol.EncodeSPD(120))
	assert.Equal(t, "SPD:85.5\n", protocol.EncodeSPD(85.52))
}

func TestEmitterBestEffort(t *testing.T) {
	var sb strings.Builder
	e := protocol.NewEmitter(&sb)

	e.EmitBPM(72)
	e.EmitSpeed(120)
	assert.Equal(t, "BPM:72\nSPD:120.0\n", sb.String())

	// A detached transport is silently ignored
	e.SetWriter(nil)
	e.EmitBPM(75)
	assert.Equal(t, "BPM:72\nSPD:120.0\n", sb.String())
}

// The connection goroutine swaps the writer while the control loop
// emits; the race detector flags any unguarded access.
func TestEmitterConcurrentWriterSwap(t *testing.T) {
	e := protocol.NewEmitter(nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			e.SetWriter(io.Discard)
			e.SetWriter(nil)
		}
	}()

	for i := 0; i < 1000; i++ {
		e.EmitBPM(75)
		e.EmitSpeed(120)
	}
	<-done
}
