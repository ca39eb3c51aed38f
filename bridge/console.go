package bridge

import (
	"fmt"
	"io"
	"sync"

	"golang.org/x/term"
)

const (
	// Prompt is shown while the bridge waits for a command.
	Prompt = "Command:"

	clearLine = "\x1b[2K\r"
)

// Console serializes terminal output between the Receiver and the Transmitter.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	ansi    bool
	midLine bool
}

// ConsoleOption is a functional option for NewConsole.
type ConsoleOption func(*Console)

// WithANSI forces ANSI line redraw on or off. By default it is on only when
// the writer is a terminal.
func WithANSI(enabled bool) ConsoleOption {
	return func(c *Console) { c.ansi = enabled }
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{w: w, ansi: isTerminal(w)}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// Do runs fn while holding the console lock. The ConsoleWriter is only valid
// inside fn.
func (c *Console) Do(fn func(w *ConsoleWriter)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn(&ConsoleWriter{c: c})
}

// Prompt redraws the prompt on a fresh line.
func (c *Console) Prompt() {
	c.Do(func(w *ConsoleWriter) { w.Prompt() })
}

// TryPrompt redraws the prompt unless another section holds the console, and
// reports whether it did. Every section the Receiver runs ends with the
// prompt, so a skipped redraw is never lost.
func (c *Console) TryPrompt() bool {
	if !c.mu.TryLock() {
		return false
	}
	defer c.mu.Unlock()

	(&ConsoleWriter{c: c}).Prompt()

	return true
}

// Notice prints one line of text followed by the prompt.
func (c *Console) Notice(format string, args ...any) {
	c.Do(func(w *ConsoleWriter) {
		w.Line(format, args...)
		w.Prompt()
	})
}

// ConsoleWriter writes to the console while its lock is held.
type ConsoleWriter struct {
	c *Console
}

func (w *ConsoleWriter) write(s string) {
	if s == "" {
		return
	}
	_, _ = io.WriteString(w.c.w, s)
	w.c.midLine = s[len(s)-1] != '\n'
}

// startLine moves to the start of an empty line, wiping a pending prompt on a
// terminal or breaking the line otherwise.
func (w *ConsoleWriter) startLine() {
	switch {
	case w.c.ansi:
		_, _ = io.WriteString(w.c.w, clearLine)
		w.c.midLine = false
	case w.c.midLine:
		w.write("\n")
	}
}

// Prompt writes the prompt on a fresh line.
func (w *ConsoleWriter) Prompt() {
	w.startLine()
	w.write(Prompt)
}

// Line writes one full line of text.
func (w *ConsoleWriter) Line(format string, args ...any) {
	w.startLine()
	w.write(fmt.Sprintf(format, args...) + "\n")
}

// Response writes a device response.
func (w *ConsoleWriter) Response(text string) {
	w.Line("Response:%s", text)
}

// Saving starts the upload status line; Done or Failed completes it.
func (w *ConsoleWriter) Saving(value float64) {
	w.startLine()
	w.write(fmt.Sprintf("Saving %f to the cloud...", value))
}

// Done completes an upload status line.
func (w *ConsoleWriter) Done() {
	w.write("done\n")
}

// Failed completes an upload status line with the error.
func (w *ConsoleWriter) Failed(err error) {
	w.write(fmt.Sprintf("failed: %v\n", err))
}
