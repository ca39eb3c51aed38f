package serial

import "sync/atomic"

// Metrics contains atomic counters for a Transport.
// Counters can be used as the value of a prometheus CounterFunc.
type Metrics struct {
	// BytesRead indicates the number of bytes received from the device.
	BytesRead atomic.Uint64
	// BytesWritten indicates the number of bytes written to the device.
	BytesWritten atomic.Uint64
	// ReadErrCount indicates the number of failed reads (ErrReadFailed).
	ReadErrCount atomic.Uint64
	// WriteErrCount indicates the number of failed writes (ErrWriteFailed).
	WriteErrCount atomic.Uint64
}

func (m *Metrics) addBytesRead(n int) {
	m.BytesRead.Add(uint64(n))
}

func (m *Metrics) addBytesWritten(n int) {
	m.BytesWritten.Add(uint64(n))
}

func (m *Metrics) incReadErrCount() {
	m.ReadErrCount.Add(1)
}

func (m *Metrics) incWriteErrCount() {
	m.WriteErrCount.Add(1)
}
