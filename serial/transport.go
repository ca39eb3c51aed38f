package serial

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Matmatix/conductivity/logger"
	"github.com/tarm/serial"
)

// Sentinel errors of the transport.
var (
	ErrPortUnavailable = errors.New("serial: port unavailable")
	ErrWriteFailed     = errors.New("serial: write failed")
	ErrReadFailed      = errors.New("serial: read failed")
	ErrPortClosed      = errors.New("serial: port closed")
)

// Port is the duplex byte stream under a Transport.
// *serial.Port from github.com/tarm/serial satisfies it; tests use in-memory fakes.
type Port interface {
	io.ReadWriteCloser
}

// Transport owns the open serial port for its entire lifetime.
//
// Read and Write may be called concurrently from different goroutines
// (one reader, one writer); the port is a full-duplex device.
type Transport struct {
	port    Port
	device  string
	logger  logger.Logger
	state   atomicPortState
	metrics Metrics
}

// Open opens the device described by cfg as 8-N-1 raw mode with a timed read.
//
// It returns an error wrapping ErrPortUnavailable when the device is missing,
// is not a terminal, or cannot be accessed.
func Open(cfg *Config) (*Transport, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrPortUnavailable)
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.device,
		Baud:        cfg.baudRate,
		ReadTimeout: cfg.readTimeout,
		Size:        serial.DefaultSize,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPortUnavailable, cfg.device, err)
	}

	cfg.logger.Info("serial: port opened",
		"device", cfg.device,
		"baud", cfg.baudRate,
		"readTimeout", cfg.readTimeout,
	)

	return newTransport(port, cfg.device, cfg.logger), nil
}

// New wraps an already open port. name is used only for logging.
func New(port Port, name string, l logger.Logger) *Transport {
	if l == nil {
		l = logger.GetLogger()
	}

	return newTransport(port, name, l)
}

func newTransport(port Port, name string, l logger.Logger) *Transport {
	return &Transport{
		port:   port,
		device: name,
		logger: l.With("device", name),
	}
}

// Device returns the device name the transport was opened with.
func (t *Transport) Device() string { return t.device }

// GetMetrics returns the transport counters.
func (t *Transport) GetMetrics() *Metrics { return &t.metrics }

// Write writes all of p to the port.
//
// A port error, or a write that makes no progress, returns an error wrapping
// ErrWriteFailed together with the number of bytes that did reach the port.
func (t *Transport) Write(p []byte) (int, error) {
	if !t.state.isOpened() {
		return 0, ErrPortClosed
	}

	written := 0
	for written < len(p) {
		n, err := t.port.Write(p[written:])
		written += n
		t.metrics.addBytesWritten(n)

		if err != nil {
			t.metrics.incWriteErrCount()
			return written, fmt.Errorf("%w: %w", ErrWriteFailed, err)
		}

		if n == 0 {
			t.metrics.incWriteErrCount()
			return written, fmt.Errorf("%w: short write %d of %d bytes", ErrWriteFailed, written, len(p))
		}
	}

	return written, nil
}

// Read reads up to len(p) fresh bytes.
//
// It returns (0, nil) when no bytes arrived within the read timeout; the caller
// polls again. A device error returns an error wrapping ErrReadFailed, and a
// closed transport returns ErrPortClosed.
func (t *Transport) Read(p []byte) (int, error) {
	if !t.state.isOpened() {
		return 0, ErrPortClosed
	}

	n, err := t.port.Read(p)
	if n > 0 {
		t.metrics.addBytesRead(n)
	}

	switch {
	case err == nil:
		return n, nil

	// A timed read with nothing pending surfaces as io.EOF from the device file.
	case errors.Is(err, io.EOF), errors.Is(err, os.ErrDeadlineExceeded):
		return n, nil

	case errors.Is(err, os.ErrClosed) || !t.state.isOpened():
		return n, ErrPortClosed

	default:
		t.metrics.incReadErrCount()
		return n, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
}

// Close releases the port. Only the first call closes the device; later calls
// return nil without touching it.
func (t *Transport) Close() error {
	if !t.state.toClosing() {
		t.logger.Debug("serial: close ignored", "state", t.state.String())
		return nil
	}
	defer t.state.toClosed()

	if err := t.port.Close(); err != nil {
		return fmt.Errorf("serial: close %s: %w", t.device, err)
	}

	t.logger.Info("serial: port closed")

	return nil
}

// IsClosed reports whether Close has been called.
func (t *Transport) IsClosed() bool {
	return !t.state.isOpened()
}
