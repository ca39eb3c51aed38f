package serial

import (
	"io"
	"os"
	"sync"
)

// fakePort is an in-memory Port. Reads pop scripted results in order and
// report (0, io.EOF) once the script is exhausted, as a timed device read does.
type fakePort struct {
	mu         sync.Mutex
	reads      []readResult
	written    []byte
	writeLimit int // bytes accepted per Write call; 0 means unlimited
	writeErr   error
	closeCount int
	closed     bool
}

type readResult struct {
	data []byte
	err  error
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, os.ErrClosed
	}
	if len(p.reads) == 0 {
		return 0, io.EOF
	}

	r := p.reads[0]
	p.reads = p.reads[1:]
	n := copy(b, r.data)

	return n, r.err
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writeErr != nil {
		return 0, p.writeErr
	}

	n := len(b)
	if p.writeLimit > 0 && n > p.writeLimit {
		n = p.writeLimit
	}
	p.written = append(p.written, b[:n]...)

	return n, nil
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closeCount++
	if p.closed {
		return os.ErrClosed
	}
	p.closed = true

	return nil
}

func (p *fakePort) Written() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]byte(nil), p.written...)
}

// stuckPort accepts no bytes and reports no error.
type stuckPort struct{ fakePort }

func (p *stuckPort) Write(_ []byte) (int, error) { return 0, nil }
