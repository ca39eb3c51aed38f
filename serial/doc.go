// Package serial is the byte-level transport of the bridge: it owns the one open
// serial device and offers raw reads and writes with no framing.
//
// The device is opened through github.com/tarm/serial as 8 data bits, no parity,
// one stop bit, no flow control and raw (non-canonical) mode. Reads are timed
// rather than non-blocking: tarm/serial maps the configured read timeout to
// VMIN=0/VTIME, so a Read with no pending bytes blocks for at most that long and
// then reports zero bytes. The receive loop therefore reacts to new bytes as soon
// as they arrive without spinning a CPU core.
//
// # Errors
//
//   - ErrPortUnavailable: the device could not be opened (missing, permission denied).
//   - ErrWriteFailed: the full span could not be written.
//   - ErrReadFailed: the device reported an error other than "no data".
//   - ErrPortClosed: the transport was closed; the receive loop ends on this error.
//
// Close may be called more than once; calls after the first are no-ops.
package serial
