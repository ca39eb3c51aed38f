package serial

import (
	"errors"
	"fmt"
	"time"

	"github.com/Matmatix/conductivity/logger"
)

const (
	DefaultDevice      = "/dev/ttyS0"
	DefaultBaudRate    = 9600
	DefaultReadTimeout = 100 * time.Millisecond
)

// Read timeout range accepted by the termios VTIME field (deciseconds in a byte).
const (
	MinReadTimeout = 100 * time.Millisecond
	MaxReadTimeout = 25500 * time.Millisecond
)

var errEmptyDevice = errors.New("serial: device path is empty")

// Config holds the settings used to open the serial device.
type Config struct {
	device      string
	baudRate    int
	readTimeout time.Duration
	logger      logger.Logger
}

// NewConfig creates a Config for device, 9600 baud and a 100ms read timeout.
// opts are applied in order; see With* functions.
func NewConfig(device string, opts ...Option) (*Config, error) {
	if device == "" {
		return nil, errEmptyDevice
	}

	cfg := &Config{
		device:      device,
		baudRate:    DefaultBaudRate,
		readTimeout: DefaultReadTimeout,
		logger:      logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Device returns the device path.
func (cfg *Config) Device() string { return cfg.device }

// BaudRate returns the line speed.
func (cfg *Config) BaudRate() int { return cfg.baudRate }

// ReadTimeout returns the longest time a Read waits for bytes.
func (cfg *Config) ReadTimeout() time.Duration { return cfg.readTimeout }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// Option is a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithBaudRate sets the line speed.
func WithBaudRate(baud int) Option {
	return optFunc(func(cfg *Config) error {
		if baud <= 0 {
			return fmt.Errorf("serial: invalid baud rate %d", baud)
		}
		cfg.baudRate = baud

		return nil
	})
}

// WithReadTimeout sets how long a Read blocks when no bytes are pending.
// It must be within [MinReadTimeout, MaxReadTimeout].
func WithReadTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinReadTimeout || d > MaxReadTimeout {
			return fmt.Errorf("serial: read timeout %v out of range [%v, %v]", d, MinReadTimeout, MaxReadTimeout)
		}
		cfg.readTimeout = d

		return nil
	})
}

// WithLogger sets the logger. A nil logger keeps the package default.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l != nil {
			cfg.logger = l
		}

		return nil
	})
}
