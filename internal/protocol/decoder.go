package protocol

import (
	"strconv"
	"strings"

	"github.com/ZXIS-dev/ZXIS-Run/internal/logger"
)

// Decoder reassembles the inbound byte stream into newline-terminated
// lines and parses them. Bytes may arrive split or batched; partial
// lines are buffered until their terminator arrives. CR bytes are
// stripped so CRLF input collapses to the canonical LF form. A line
// that outgrows the configured cap is discarded up to its terminator
// so a stream without newlines can never grow the buffer without
// bound.
type Decoder struct {
	buf     []byte
	cap     int
	discard bool
	dropped uint64
}

func NewDecoder(capacity int) *Decoder {
	return &Decoder{
		buf: make([]byte, 0, capacity),
		cap: capacity,
	}
}

// Feed consumes a chunk of inbound bytes and returns the commands
// completed by it, in arrival order. Unrecognized or malformed lines
// are dropped silently.
func (d *Decoder) Feed(p []byte) []Command {
	var cmds []Command

	for _, b := range p {
		switch {
		case b == '\n':
			if d.discard {
				d.discard = false
				continue
			}
			if cmd, ok := parseLine(string(d.buf)); ok {
				cmds = append(cmds, cmd)
			}
			d.buf = d.buf[:0]
		case b == '\r':
			// normalized away
		case d.discard:
			// draining an oversized line
		case len(d.buf) >= d.cap:
			logger.Warn().Int("cap", d.cap).Msg("inbound line exceeds buffer cap, discarding")
			d.buf = d.buf[:0]
			d.discard = true
			d.dropped++
		default:
			d.buf = append(d.buf, b)
		}
	}

	return cmds
}

// Dropped reports how many oversized lines were discarded.
func (d *Decoder) Dropped() uint64 {
	return d.dropped
}

func parseLine(line string) (Command, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, false
	}

	switch {
	case line == "STOP":
		return Command{Kind: KindStop}, true

	case strings.HasPrefix(line, "T:"):
		target, err := strconv.Atoi(strings.TrimSpace(line[2:]))
		if err != nil {
			logger.Debug().Str("line", line).Msg("malformed target payload dropped")
			return Command{}, false
		}
		return Command{Kind: KindTarget, Target: target}, true

	case strings.HasPrefix(line, "S:"):
		speed, err := strconv.ParseFloat(strings.TrimSpace(line[2:]), 64)
		if err != nil {
			logger.Debug().Str("line", line).Msg("malformed speed payload dropped")
			return Command{}, false
		}
		return Command{Kind: KindSpeed, Speed: speed}, true

	case strings.HasPrefix(line, "MODE:"):
		mode := strings.ToLower(strings.TrimSpace(line[5:]))
		if mode == "" {
			return Command{}, false
		}
		return Command{Kind: KindMode, Mode: mode}, true

	default:
		logger.Debug().Str("line", line).Msg("unrecognized line ignored")
		return Command{}, false
	}
}
