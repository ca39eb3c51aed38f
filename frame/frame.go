// Package frame reassembles the device's carriage-return terminated responses
// out of arbitrarily fragmented serial reads and classifies them.
package frame

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
)

const (
	// Terminator ends one command or one response on the wire.
	Terminator byte = 0x0D
	// DefaultMarker is the first byte of an informational (non-telemetry) response.
	DefaultMarker byte = '*'
	// DefaultCapacity is the largest response, terminator excluded, the accumulator holds.
	DefaultCapacity = 256
)

// ErrFrameOverflow is reported when a response grows past the accumulator
// capacity. The partial response is dropped and the accumulator resynchronizes
// on the next terminator.
var ErrFrameOverflow = errors.New("frame: response exceeds accumulator capacity")

// Kind classifies a completed response.
type Kind uint8

const (
	// KindNumeric is a telemetry reading; Response.Value holds it.
	KindNumeric Kind = iota
	// KindInfo is informational or echo text starting with the marker byte.
	KindInfo
	// KindUnparseable is neither marked nor a number. It is displayed but never uploaded.
	KindUnparseable
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindInfo:
		return "info"
	case KindUnparseable:
		return "unparseable"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Response is one completed device response with the terminator stripped.
type Response struct {
	raw   []byte
	kind  Kind
	value float64
}

// Classify builds a Response from raw (terminator already stripped).
//
// A response whose first byte is marker is KindInfo. Otherwise the text,
// trimmed of surrounding whitespace, must be a finite decimal number to be
// KindNumeric. Everything else is KindUnparseable, including an empty
// response, NaN, infinities and hex floats.
func Classify(raw []byte, marker byte) Response {
	rsp := Response{raw: raw, kind: KindUnparseable}

	if len(raw) == 0 {
		return rsp
	}

	if raw[0] == marker {
		rsp.kind = KindInfo
		return rsp
	}

	if v, ok := parseDecimal(bytes.TrimSpace(raw)); ok {
		rsp.kind = KindNumeric
		rsp.value = v
	}

	return rsp
}

// parseDecimal accepts only sign, digits, '.' and an exponent, so the special
// forms strconv.ParseFloat also understands are rejected.
func parseDecimal(text []byte) (float64, bool) {
	for _, c := range text {
		switch {
		case c >= '0' && c <= '9':
		case c == '.', c == '+', c == '-', c == 'e', c == 'E':
		default:
			return 0, false
		}
	}

	v, err := strconv.ParseFloat(string(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

// Bytes returns the response bytes without the terminator.
func (r Response) Bytes() []byte { return r.raw }

// String returns the response text without the terminator.
func (r Response) String() string { return string(r.raw) }

// Kind returns the response classification.
func (r Response) Kind() Kind { return r.kind }

// Value returns the telemetry value. It is only meaningful for KindNumeric.
func (r Response) Value() float64 { return r.value }

// IsTelemetry reports whether the response should be relayed to the cloud.
func (r Response) IsTelemetry() bool { return r.kind == KindNumeric }
