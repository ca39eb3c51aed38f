package bridge

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Matmatix/conductivity/logger"
	"github.com/Matmatix/conductivity/serial"
	"github.com/stretchr/testify/require"
)

const testVariableID = "5942d2ca762542022ae7c5d6"

// fakeTransport delivers scripted device chunks and records commands.
// A read with nothing queued waits briefly and reports no data, like a timed
// serial read.
type fakeTransport struct {
	rx       chan []byte
	closed   chan struct{}
	once     sync.Once
	mu       sync.Mutex
	written  bytes.Buffer
	writeErr error
	closes   int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		rx:     make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (f *fakeTransport) deliver(chunks ...string) {
	for _, c := range chunks {
		f.rx <- []byte(c)
	}
}

func (f *fakeTransport) Read(p []byte) (int, error) {
	select {
	case <-f.closed:
		return 0, serial.ErrPortClosed
	default:
	}

	select {
	case data := <-f.rx:
		return copy(p, data), nil
	case <-f.closed:
		return 0, serial.ErrPortClosed
	case <-time.After(5 * time.Millisecond):
		return 0, nil
	}
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeErr != nil {
		return 0, f.writeErr
	}

	return f.written.Write(p)
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closes++
	f.mu.Unlock()

	f.once.Do(func() { close(f.closed) })

	return nil
}

func (f *fakeTransport) Written() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.written.String()
}

func (f *fakeTransport) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

type savedValue struct {
	VariableID string
	Value      float64
	Timestamp  int64
}

type fakeSaver struct {
	mu    sync.Mutex
	saved []savedValue
	err   error
}

func (s *fakeSaver) SaveValue(_ context.Context, variableID string, value float64, timestamp int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, savedValue{VariableID: variableID, Value: value, Timestamp: timestamp})

	return nil
}

func (s *fakeSaver) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err
}

func (s *fakeSaver) Saved() []savedValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]savedValue(nil), s.saved...)
}

// syncBuffer is a goroutine-safe bytes.Buffer for console output.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func newTestOptions(t *testing.T, opts ...Option) *options {
	t.Helper()

	o := defaultOptions()
	o.variableID = testVariableID
	o.logger = logger.NewSlogWriter(&bytes.Buffer{}, logger.DebugLevel, false)

	for _, opt := range opts {
		require.NoError(t, opt.apply(o))
	}

	return o
}

// runReceiver starts a Receiver and returns a stop function that waits for it.
func runReceiver(t *testing.T, rx *Receiver) (stop func() error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rx.Run(ctx) }()

	var once sync.Once
	var result error
	stop = func() error {
		once.Do(func() {
			cancel()
			select {
			case result = <-done:
			case <-time.After(2 * time.Second):
				t.Error("receiver did not stop")
			}
		})

		return result
	}
	t.Cleanup(func() { _ = stop() })

	return stop
}
