package bridge

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Matmatix/conductivity/frame"
	"github.com/Matmatix/conductivity/logger"
)

const (
	// DefaultQuitKey ends the session.
	DefaultQuitKey byte = 'q'
	// DefaultLineCapacity bounds a command line, terminator included.
	DefaultLineCapacity = 20
)

type options struct {
	console       *Console
	output        io.Writer
	variableID    string
	marker        byte
	quitKey       byte
	lineCapacity  int
	frameCapacity int
	idleBackoff   time.Duration
	errorBackoff  time.Duration
	logger        logger.Logger
}

func defaultOptions() *options {
	return &options{
		output:        os.Stdout,
		marker:        frame.DefaultMarker,
		quitKey:       DefaultQuitKey,
		lineCapacity:  DefaultLineCapacity,
		frameCapacity: frame.DefaultCapacity,
		errorBackoff:  DefaultErrorBackoff,
		logger:        logger.GetLogger(),
	}
}

// Option is a functional option for New.
type Option interface {
	apply(*options) error
}

type optFunc func(*options) error

func (f optFunc) apply(o *options) error { return f(o) }

// WithConsole shares an existing Console. It takes precedence over WithOutput.
func WithConsole(c *Console) Option {
	return optFunc(func(o *options) error {
		o.console = c
		return nil
	})
}

// WithOutput sets where the console writes. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return optFunc(func(o *options) error {
		if w == nil {
			return fmt.Errorf("bridge: output is nil")
		}
		o.output = w

		return nil
	})
}

// WithVariableID sets the cloud variable receiving the device's telemetry.
func WithVariableID(id string) Option {
	return optFunc(func(o *options) error {
		o.variableID = id
		return nil
	})
}

// WithMarker sets the first byte of informational responses.
func WithMarker(marker byte) Option {
	return optFunc(func(o *options) error {
		o.marker = marker
		return nil
	})
}

// WithQuitKey sets the keystroke that ends the session.
func WithQuitKey(key byte) Option {
	return optFunc(func(o *options) error {
		if key == '\n' || key == frame.Terminator || key == 0 {
			return fmt.Errorf("bridge: quit key %q is reserved", key)
		}
		o.quitKey = key

		return nil
	})
}

// WithLineCapacity bounds a command line, terminator included.
func WithLineCapacity(n int) Option {
	return optFunc(func(o *options) error {
		if n < 2 {
			return fmt.Errorf("bridge: line capacity %d leaves no room for a command", n)
		}
		o.lineCapacity = n

		return nil
	})
}

// WithFrameCapacity bounds a device response, terminator excluded.
func WithFrameCapacity(n int) Option {
	return optFunc(func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("bridge: frame capacity %d must be positive", n)
		}
		o.frameCapacity = n

		return nil
	})
}

// WithIdleBackoff sets the pause after a read that returned no bytes.
// The serial transport already blocks for its read timeout, so the default is zero;
// set it for transports whose reads return immediately.
func WithIdleBackoff(d time.Duration) Option {
	return optFunc(func(o *options) error {
		o.idleBackoff = d
		return nil
	})
}

// WithErrorBackoff sets the pause after a failed read.
func WithErrorBackoff(d time.Duration) Option {
	return optFunc(func(o *options) error {
		o.errorBackoff = d
		return nil
	})
}

// WithLogger sets the logger. A nil logger keeps the package default.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(o *options) error {
		if l != nil {
			o.logger = l
		}

		return nil
	})
}
