package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Matmatix/conductivity/logger"
)

// Transport is the serial link shared by both loops. *serial.Transport implements it.
type Transport interface {
	io.ReadWriteCloser
}

// Bridge wires a Transmitter and a Receiver to one Transport and Console.
type Bridge struct {
	transport   Transport
	console     *Console
	receiver    *Receiver
	transmitter *Transmitter
	logger      logger.Logger
	metrics     Metrics
}

// New creates a Bridge over transport uploading telemetry through saver.
//
// The saver must be fully initialized (authenticated) before New is called;
// the Receiver goroutine only reads it.
func New(transport Transport, saver ValueSaver, opts ...Option) (*Bridge, error) {
	if transport == nil {
		return nil, errors.New("bridge: transport is nil")
	}
	if saver == nil {
		return nil, errors.New("bridge: value saver is nil")
	}

	o := defaultOptions()
	for _, opt := range opts {
		if err := opt.apply(o); err != nil {
			return nil, err
		}
	}

	if o.variableID == "" {
		return nil, errors.New("bridge: variable id is empty")
	}

	console := o.console
	if console == nil {
		console = NewConsole(o.output)
	}

	b := &Bridge{
		transport: transport,
		console:   console,
		logger:    o.logger,
	}
	b.receiver = newReceiver(transport, saver, console, o, &b.metrics)
	b.transmitter = newTransmitter(transport, console, o, &b.metrics)

	return b, nil
}

// Console returns the console shared by both loops.
func (b *Bridge) Console() *Console { return b.console }

// GetMetrics returns the session counters.
func (b *Bridge) GetMetrics() *Metrics { return &b.metrics }

// Run shows the prompt, starts the Receiver in the background and runs the
// Transmitter on in until the quit key or end of input. It then closes the
// transport and waits for the Receiver to stop.
//
// When ctx ends first, Run closes the transport and returns ctx.Err() without
// waiting for the Transmitter, which may still be blocked reading in.
func (b *Bridge) Run(ctx context.Context, in io.Reader) error {
	rxCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	b.console.Prompt()

	rxDone := make(chan error, 1)
	go func() {
		rxDone <- b.receiver.Run(rxCtx)
	}()

	txDone := make(chan error, 1)
	go func() {
		txDone <- b.transmitter.Run(in)
	}()

	var runErr error
	select {
	case runErr = <-txDone:
	case <-ctx.Done():
		runErr = ctx.Err()
	}

	closeErr := b.transport.Close()
	cancel()

	if err := <-rxDone; err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Warn("bridge: receiver ended with error", "error", err)
	}

	if closeErr != nil {
		closeErr = fmt.Errorf("bridge: close transport: %w", closeErr)
	}

	return errors.Join(runErr, closeErr)
}
