package bridge

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/Matmatix/conductivity/frame"
	"github.com/Matmatix/conductivity/internal/pool"
	"github.com/Matmatix/conductivity/logger"
	"github.com/Matmatix/conductivity/serial"
	"github.com/Matmatix/conductivity/ubidots"
)

const (
	// readChunkSize is the most bytes taken from the transport per read.
	readChunkSize = 255

	// DefaultErrorBackoff is the pause after a transport read error.
	DefaultErrorBackoff = 100 * time.Millisecond
)

// ValueSaver uploads one telemetry value. *ubidots.Client implements it.
type ValueSaver interface {
	SaveValue(ctx context.Context, variableID string, value float64, timestamp int64) error
}

// Receiver is the background loop turning device bytes into printed responses
// and uploaded telemetry.
//
// It owns its frame.Accumulator exclusively; only Run touches it.
type Receiver struct {
	reader       io.Reader
	saver        ValueSaver
	console      *Console
	acc          *frame.Accumulator
	variableID   string
	idleBackoff  time.Duration
	errorBackoff time.Duration
	logger       logger.Logger
	metrics      *Metrics
}

func newReceiver(r io.Reader, saver ValueSaver, console *Console, o *options, m *Metrics) *Receiver {
	return &Receiver{
		reader:       r,
		saver:        saver,
		console:      console,
		acc:          frame.NewAccumulator(o.frameCapacity, o.marker),
		variableID:   o.variableID,
		idleBackoff:  o.idleBackoff,
		errorBackoff: o.errorBackoff,
		logger:       o.logger.With("component", "receiver"),
		metrics:      m,
	}
}

// Run reads until the transport is closed or ctx is done.
//
// It returns nil when the transport reports serial.ErrPortClosed or io.EOF and
// ctx.Err() when the context ends it. Read errors other than those are logged
// and the loop resumes after the error backoff.
func (r *Receiver) Run(ctx context.Context) error {
	buf := make([]byte, readChunkSize)

	r.logger.Debug("bridge: receiver started")
	defer r.logger.Debug("bridge: receiver stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := r.reader.Read(buf)
		if n > 0 {
			r.handleBytes(ctx, buf[:n])
		}

		switch {
		case err == nil:
			if n == 0 {
				if err := pool.Sleep(ctx, r.idleBackoff); err != nil {
					return err
				}
			}

		case errors.Is(err, serial.ErrPortClosed), errors.Is(err, io.EOF):
			return nil

		default:
			r.metrics.ReadErrCount.Add(1)
			r.logger.Error("bridge: transport read failed", "error", err)

			if err := pool.Sleep(ctx, r.errorBackoff); err != nil {
				return err
			}
		}
	}
}

func (r *Receiver) handleBytes(ctx context.Context, p []byte) {
	rsps, err := r.acc.Feed(p)

	for _, rsp := range rsps {
		r.handleResponse(ctx, rsp)
	}

	if err != nil {
		r.metrics.FrameOverflowCount.Add(1)
		r.logger.Warn("bridge: response dropped", "error", err)
		r.console.Notice("Response dropped: longer than %d bytes", r.acc.Cap())
	}
}

// handleResponse prints rsp and, for telemetry, uploads it, all within one
// console section so the status stays attached to its response.
func (r *Receiver) handleResponse(ctx context.Context, rsp frame.Response) {
	r.metrics.ResponseCount.Add(1)

	r.console.Do(func(w *ConsoleWriter) {
		defer w.Prompt()

		w.Response(rsp.String())

		switch rsp.Kind() {
		case frame.KindInfo:
			return

		case frame.KindUnparseable:
			r.metrics.UnparseableCount.Add(1)
			r.logger.Debug("bridge: response is not telemetry", "response", rsp.String())

			return

		case frame.KindNumeric:
			r.metrics.TelemetryCount.Add(1)
			w.Saving(rsp.Value())

			err := r.saver.SaveValue(ctx, r.variableID, rsp.Value(), ubidots.TimestampNow)
			if err != nil {
				r.metrics.UploadErrCount.Add(1)
				r.logger.Warn("bridge: telemetry upload failed",
					"variable", r.variableID,
					"value", rsp.Value(),
					"error", err,
				)
				w.Failed(err)

				return
			}

			w.Done()
		}
	})
}
