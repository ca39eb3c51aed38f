package bridge

import "sync/atomic"

// Metrics contains atomic counters for a Bridge session.
type Metrics struct {
	// ResponseCount indicates the number of complete device responses.
	ResponseCount atomic.Uint64
	// TelemetryCount indicates the number of numeric responses handed to the relay.
	TelemetryCount atomic.Uint64
	// UnparseableCount indicates the number of responses neither marked nor numeric.
	UnparseableCount atomic.Uint64
	// FrameOverflowCount indicates the number of responses dropped for exceeding capacity.
	FrameOverflowCount atomic.Uint64
	// UploadErrCount indicates the number of failed telemetry uploads.
	UploadErrCount atomic.Uint64
	// ReadErrCount indicates the number of transport read errors.
	ReadErrCount atomic.Uint64

	// CommandCount indicates the number of command lines written to the device.
	CommandCount atomic.Uint64
	// CommandErrCount indicates the number of command lines the transport failed to write.
	CommandErrCount atomic.Uint64
	// RejectedKeyCount indicates the number of keystrokes dropped by a full line buffer.
	RejectedKeyCount atomic.Uint64
}
