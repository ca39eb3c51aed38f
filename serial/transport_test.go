package serial

import (
	"errors"
	"testing"
	"time"

	"github.com/Matmatix/conductivity/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(port Port) *Transport {
	return New(port, "fake0", logger.GetLogger())
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(DefaultDevice)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyS0", cfg.Device())
	assert.Equal(t, 9600, cfg.BaudRate())
	assert.Equal(t, 100*time.Millisecond, cfg.ReadTimeout())
	assert.NotNil(t, cfg.GetLogger())
}

func TestNewConfig_Options(t *testing.T) {
	cfg, err := NewConfig("/dev/ttyUSB0", WithBaudRate(115200), WithReadTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 115200, cfg.BaudRate())
	assert.Equal(t, time.Second, cfg.ReadTimeout())

	_, err = NewConfig("")
	require.Error(t, err)

	_, err = NewConfig("/dev/ttyS0", WithBaudRate(0))
	require.Error(t, err)

	_, err = NewConfig("/dev/ttyS0", WithReadTimeout(10*time.Millisecond))
	require.Error(t, err)

	_, err = NewConfig("/dev/ttyS0", WithReadTimeout(time.Minute))
	require.Error(t, err)
}

func TestOpen_MissingDevice(t *testing.T) {
	cfg, err := NewConfig("/dev/conductivity-test-no-such-device")
	require.NoError(t, err)

	tr, err := Open(cfg)
	require.Error(t, err)
	assert.Nil(t, tr)
	assert.True(t, errors.Is(err, ErrPortUnavailable))

	_, err = Open(nil)
	assert.ErrorIs(t, err, ErrPortUnavailable)
}

func TestTransport_WriteFullSpan(t *testing.T) {
	port := &fakePort{writeLimit: 3}
	tr := newTestTransport(port)

	n, err := tr.Write([]byte("READ\r"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("READ\r"), port.Written())
	assert.EqualValues(t, 5, tr.GetMetrics().BytesWritten.Load())
}

func TestTransport_WriteError(t *testing.T) {
	port := &fakePort{writeErr: errors.New("io error")}
	tr := newTestTransport(port)

	n, err := tr.Write([]byte("READ\r"))
	require.Error(t, err)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.EqualValues(t, 1, tr.GetMetrics().WriteErrCount.Load())
}

func TestTransport_WriteNoProgress(t *testing.T) {
	tr := newTestTransport(&stuckPort{})

	_, err := tr.Write([]byte("X\r"))
	assert.ErrorIs(t, err, ErrWriteFailed)
}

func TestTransport_ReadNoData(t *testing.T) {
	tr := newTestTransport(&fakePort{})

	buf := make([]byte, 16)
	n, err := tr.Read(buf)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTransport_ReadData(t *testing.T) {
	port := &fakePort{reads: []readResult{{data: []byte("4.0")}, {data: []byte("0\r")}}}
	tr := newTestTransport(port)

	buf := make([]byte, 16)
	n, err := tr.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "4.0", string(buf[:n]))

	n, err = tr.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "0\r", string(buf[:n]))
	assert.EqualValues(t, 5, tr.GetMetrics().BytesRead.Load())
}

func TestTransport_ReadError(t *testing.T) {
	port := &fakePort{reads: []readResult{{err: errors.New("framing error")}}}
	tr := newTestTransport(port)

	_, err := tr.Read(make([]byte, 8))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReadFailed)
	assert.False(t, errors.Is(err, ErrPortClosed))
	assert.EqualValues(t, 1, tr.GetMetrics().ReadErrCount.Load())
}

func TestTransport_CloseTwice(t *testing.T) {
	port := &fakePort{}
	tr := newTestTransport(port)

	require.NoError(t, tr.Close())
	assert.True(t, tr.IsClosed())

	// second close is a no-op and never reaches the port
	require.NotPanics(t, func() {
		assert.NoError(t, tr.Close())
	})
	assert.Equal(t, 1, port.closeCount)
}

func TestTransport_UseAfterClose(t *testing.T) {
	tr := newTestTransport(&fakePort{})
	require.NoError(t, tr.Close())

	_, err := tr.Read(make([]byte, 8))
	assert.ErrorIs(t, err, ErrPortClosed)

	_, err = tr.Write([]byte("X\r"))
	assert.ErrorIs(t, err, ErrPortClosed)
}
