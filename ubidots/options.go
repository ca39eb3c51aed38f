package ubidots

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Matmatix/conductivity/logger"
)

const (
	// DefaultBaseURL is the Ubidots v1.6 API root.
	DefaultBaseURL = "http://things.ubidots.com/api/v1.6"

	// DefaultHTTPTimeout bounds one request round trip.
	DefaultHTTPTimeout = 10 * time.Second
)

type options struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     logger.Logger
	now        func() time.Time
}

func defaultOptions() *options {
	return &options{
		baseURL: DefaultBaseURL,
		timeout: DefaultHTTPTimeout,
		logger:  logger.GetLogger(),
		now:     time.Now,
	}
}

// Option is a functional option for NewClient.
type Option interface {
	apply(*options) error
}

type optFunc func(*options) error

func (f optFunc) apply(o *options) error { return f(o) }

// WithBaseURL sets the API root, e.g. "https://industrial.api.ubidots.com/api/v1.6".
// A trailing slash is removed.
func WithBaseURL(baseURL string) Option {
	return optFunc(func(o *options) error {
		baseURL = strings.TrimRight(baseURL, "/")
		if baseURL == "" {
			return fmt.Errorf("ubidots: base url is empty")
		}
		o.baseURL = baseURL

		return nil
	})
}

// WithHTTPClient sets the HTTP client. Its Timeout is left untouched.
func WithHTTPClient(c *http.Client) Option {
	return optFunc(func(o *options) error {
		if c == nil {
			return fmt.Errorf("ubidots: http client is nil")
		}
		o.httpClient = c

		return nil
	})
}

// WithHTTPTimeout bounds each request round trip of the default HTTP client.
// Zero disables the bound.
func WithHTTPTimeout(d time.Duration) Option {
	return optFunc(func(o *options) error {
		if d < 0 {
			return fmt.Errorf("ubidots: negative http timeout %v", d)
		}
		o.timeout = d

		return nil
	})
}

// WithLogger sets the logger. A nil logger keeps the package default.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(o *options) error {
		if l != nil {
			o.logger = l
		}

		return nil
	})
}

// WithClock sets the wall clock used to resolve TimestampNow.
func WithClock(now func() time.Time) Option {
	return optFunc(func(o *options) error {
		if now != nil {
			o.now = now
		}

		return nil
	})
}
