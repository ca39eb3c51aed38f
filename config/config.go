// Package config loads the bridge settings from an optional YAML file and
// CONDUCTIVITY_* environment variables.
//
// Precedence, highest first: environment, config file, defaults. The process
// takes no command line flags; the config file is named by the path argument
// of Load or, when that is empty, by CONDUCTIVITY_CONFIG.
//
//	serial:
//	  device: /dev/ttyS0
//	  baud: 9600
//	  read_timeout: 100ms
//	  frame_capacity: 256
//	cloud:
//	  base_url: http://things.ubidots.com/api/v1.6
//	  api_key: <key>            # CONDUCTIVITY_CLOUD_API_KEY
//	  variable_id: 5942d2ca762542022ae7c5d6
//	  http_timeout: 10s
//	console:
//	  marker: "*"
//	  quit: q
//	  line_capacity: 20
//	log:
//	  level: info
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Matmatix/conductivity/frame"
	"github.com/Matmatix/conductivity/logger"
	"github.com/Matmatix/conductivity/serial"
	"github.com/Matmatix/conductivity/ubidots"
	"github.com/spf13/viper"
)

const (
	EnvPrefix     = "CONDUCTIVITY"
	EnvConfigFile = EnvPrefix + "_CONFIG"

	DefaultVariableID   = "5942d2ca762542022ae7c5d6"
	DefaultLineCapacity = 20
)

var ErrMissingAPIKey = errors.New("config: cloud.api_key is required (set " + EnvPrefix + "_CLOUD_API_KEY)")

// Config is the validated bridge configuration.
type Config struct {
	Serial  SerialConfig
	Cloud   CloudConfig
	Console ConsoleConfig
	Log     LogConfig
}

type SerialConfig struct {
	Device        string
	Baud          int
	ReadTimeout   time.Duration
	FrameCapacity int
}

type CloudConfig struct {
	BaseURL     string
	APIKey      string
	VariableID  string
	HTTPTimeout time.Duration
}

type ConsoleConfig struct {
	// Marker is the first byte of informational device responses.
	Marker byte
	// Quit is the keystroke that ends the session.
	Quit byte
	// LineCapacity bounds a command line, terminator included.
	LineCapacity int
}

type LogConfig struct {
	Level logger.Level
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serial.device", serial.DefaultDevice)
	v.SetDefault("serial.baud", serial.DefaultBaudRate)
	v.SetDefault("serial.read_timeout", serial.DefaultReadTimeout)
	v.SetDefault("serial.frame_capacity", frame.DefaultCapacity)

	v.SetDefault("cloud.base_url", ubidots.DefaultBaseURL)
	v.SetDefault("cloud.api_key", "")
	v.SetDefault("cloud.variable_id", DefaultVariableID)
	v.SetDefault("cloud.http_timeout", ubidots.DefaultHTTPTimeout)

	v.SetDefault("console.marker", string(frame.DefaultMarker))
	v.SetDefault("console.quit", "q")
	v.SetDefault("console.line_capacity", DefaultLineCapacity)

	v.SetDefault("log.level", "info")
}

// Load reads the configuration. path may be empty, in which case the file named
// by CONDUCTIVITY_CONFIG is used if set, and defaults plus environment otherwise.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Serial: SerialConfig{
			Device:        v.GetString("serial.device"),
			Baud:          v.GetInt("serial.baud"),
			ReadTimeout:   v.GetDuration("serial.read_timeout"),
			FrameCapacity: v.GetInt("serial.frame_capacity"),
		},
		Cloud: CloudConfig{
			BaseURL:     v.GetString("cloud.base_url"),
			APIKey:      v.GetString("cloud.api_key"),
			VariableID:  v.GetString("cloud.variable_id"),
			HTTPTimeout: v.GetDuration("cloud.http_timeout"),
		},
		Console: ConsoleConfig{
			LineCapacity: v.GetInt("console.line_capacity"),
		},
	}

	var err error
	if cfg.Console.Marker, err = singleByte("console.marker", v.GetString("console.marker")); err != nil {
		return nil, err
	}
	if cfg.Console.Quit, err = singleByte("console.quit", v.GetString("console.quit")); err != nil {
		return nil, err
	}

	level, ok := logger.ParseLevel(strings.ToLower(v.GetString("log.level")))
	if !ok {
		return nil, fmt.Errorf("config: unknown log.level %q", v.GetString("log.level"))
	}
	cfg.Log.Level = level

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings that have no safe fallback.
func (cfg *Config) Validate() error {
	switch {
	case cfg.Cloud.APIKey == "":
		return ErrMissingAPIKey
	case cfg.Cloud.VariableID == "":
		return errors.New("config: cloud.variable_id is empty")
	case cfg.Serial.Device == "":
		return errors.New("config: serial.device is empty")
	case cfg.Serial.FrameCapacity <= 0:
		return fmt.Errorf("config: serial.frame_capacity %d must be positive", cfg.Serial.FrameCapacity)
	case cfg.Console.LineCapacity < 2:
		return fmt.Errorf("config: console.line_capacity %d must leave room for a command and its terminator", cfg.Console.LineCapacity)
	case cfg.Console.Quit == '\n' || cfg.Console.Quit == frame.Terminator:
		return errors.New("config: console.quit cannot be a line terminator")
	}

	return nil
}

func singleByte(key, s string) (byte, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("config: %s must be exactly one ASCII character, got %q", key, s)
	}

	return s[0], nil
}
