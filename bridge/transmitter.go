package bridge

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/Matmatix/conductivity/frame"
	"github.com/Matmatix/conductivity/logger"
)

// ErrLineOverflow is reported when a keystroke would not fit in the line buffer.
var ErrLineOverflow = errors.New("bridge: command line is full")

// Transmitter is the foreground loop turning keystrokes into device commands.
//
// It owns its line buffer exclusively. The buffer never holds more than
// capacity-1 bytes so the terminator always fits.
type Transmitter struct {
	writer   io.Writer
	console  *Console
	line     []byte
	capacity int
	quitKey  byte
	full     bool
	logger   logger.Logger
	metrics  *Metrics
}

func newTransmitter(w io.Writer, console *Console, o *options, m *Metrics) *Transmitter {
	return &Transmitter{
		writer:   w,
		console:  console,
		line:     make([]byte, 0, o.lineCapacity),
		capacity: o.lineCapacity,
		quitKey:  o.quitKey,
		logger:   o.logger.With("component", "transmitter"),
		metrics:  m,
	}
}

// Run reads keystrokes from in until the quit key or end of input.
// It returns nil on either; other input errors are returned.
func (t *Transmitter) Run(in io.Reader) error {
	br := bufio.NewReader(in)

	for {
		c, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("bridge: read input: %w", err)
		}

		if t.HandleKey(c) {
			return nil
		}
	}
}

// HandleKey processes one keystroke and reports whether it was the quit key.
//
// NUL and carriage return are ignored, newline transmits the pending line,
// and every other byte is appended to the line.
func (t *Transmitter) HandleKey(c byte) (quit bool) {
	switch c {
	case t.quitKey:
		return true

	case 0, frame.Terminator:
		return false

	case '\n':
		t.flush()
		return false
	}

	if err := t.appendKey(c); err != nil {
		t.metrics.RejectedKeyCount.Add(1)

		// report once per line, the rest of an oversized paste is dropped silently
		if !t.full {
			t.full = true
			t.logger.Warn("bridge: keystroke rejected", "error", err)
			t.console.Notice("Command too long, at most %d characters", t.capacity-1)
		}
	}

	return false
}

func (t *Transmitter) appendKey(c byte) error {
	if len(t.line) >= t.capacity-1 {
		return ErrLineOverflow
	}
	t.line = append(t.line, c)

	return nil
}

// Pending returns a copy of the line typed so far.
func (t *Transmitter) Pending() []byte {
	return append([]byte(nil), t.line...)
}

// flush writes the pending line and its terminator, then clears the buffer.
// An empty line is not transmitted. Only a failed write waits for the console.
func (t *Transmitter) flush() {
	defer func() {
		t.line = t.line[:0]
		t.full = false
	}()

	if len(t.line) == 0 {
		t.console.TryPrompt()
		return
	}

	t.line = append(t.line, frame.Terminator)

	if _, err := t.writer.Write(t.line); err != nil {
		t.metrics.CommandErrCount.Add(1)
		t.logger.Warn("bridge: command dropped", "command", string(t.line[:len(t.line)-1]), "error", err)
		t.console.Notice("Transmit Error: %v", err)

		return
	}

	t.metrics.CommandCount.Add(1)

	// a response section in progress, upload included, redraws the prompt itself
	t.console.TryPrompt()
}
