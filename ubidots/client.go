package ubidots

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/Matmatix/conductivity/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

// TimestampNow asks SaveValue to stamp the value with the wall clock at call time.
const TimestampNow int64 = -1

const (
	authTokenHeader = "X-Auth-Token"

	// maxResponseBody caps how much of a response body is read.
	maxResponseBody = 1 << 20
)

// Sample is one uploaded telemetry value.
type Sample struct {
	VariableID string
	Value      float64
	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64
}

type valuePayload struct {
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
}

type tokenResponse struct {
	Token *string `json:"token"`
}

// Client is an authenticated Ubidots session.
type Client struct {
	baseURL    string
	apiKey     string
	token      string
	httpClient *http.Client
	logger     logger.Logger
	now        func() (ms int64)

	lastSamples *xsync.MapOf[string, Sample]
	metrics     Metrics
}

// NewClient authenticates apiKey against the API and returns a session holding
// the issued token.
//
// Any transport error, non-2xx status, or response without a "token" string
// returns an error wrapping ErrAuthFailed.
func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %w", ErrAuthFailed, ErrEmptyAPIKey)
	}

	o := defaultOptions()
	for _, opt := range opts {
		if err := opt.apply(o); err != nil {
			return nil, err
		}
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.timeout}
	}

	clock := o.now
	c := &Client{
		baseURL:     o.baseURL,
		apiKey:      apiKey,
		httpClient:  httpClient,
		logger:      o.logger,
		now:         func() int64 { return clock().UnixMilli() },
		lastSamples: xsync.NewMapOf[string, Sample](),
	}

	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}

	c.logger.Info("ubidots: session established", "baseURL", c.baseURL)

	return c, nil
}

// authenticate exchanges the API key for a token. The key travels as the
// path-style credential "/<key>" in the token header, with an empty body.
func (c *Client) authenticate(ctx context.Context) error {
	var rsp tokenResponse

	err := c.post(ctx, c.baseURL+"/auth/token", "/"+c.apiKey, nil, &rsp)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	if rsp.Token == nil || *rsp.Token == "" {
		return fmt.Errorf("%w: response has no token", ErrAuthFailed)
	}

	c.token = *rsp.Token

	return nil
}

// BaseURL returns the API root of the session.
func (c *Client) BaseURL() string { return c.baseURL }

// Token returns the cached bearer token.
func (c *Client) Token() string { return c.token }

// GetMetrics returns the client counters.
func (c *Client) GetMetrics() *Metrics { return &c.metrics }

// LastSample returns the most recent sample accepted by the API for variableID.
func (c *Client) LastSample(variableID string) (Sample, bool) {
	return c.lastSamples.Load(variableID)
}

// Samples returns the most recent accepted sample of every variable, ordered
// by variable id.
func (c *Client) Samples() []Sample {
	samples := make([]Sample, 0, c.lastSamples.Size())
	c.lastSamples.Range(func(_ string, s Sample) bool {
		samples = append(samples, s)
		return true
	})

	slices.SortFunc(samples, func(a, b Sample) int {
		return strings.Compare(a.VariableID, b.VariableID)
	})

	return samples
}

// SaveValue uploads one value for variableID.
//
// timestamp is in milliseconds since the Unix epoch; TimestampNow resolves to
// the current wall clock when the call is made.
func (c *Client) SaveValue(ctx context.Context, variableID string, value float64, timestamp int64) error {
	if variableID == "" {
		return fmt.Errorf("%w: %w", ErrUploadFailed, ErrEmptyVariableID)
	}

	if timestamp == TimestampNow {
		timestamp = c.now()
	}

	body, err := json.Marshal(valuePayload{Value: value, Timestamp: timestamp})
	if err != nil {
		c.metrics.incUploadErrCount()
		return fmt.Errorf("%w: encode value: %w", ErrUploadFailed, err)
	}

	endpoint := c.baseURL + "/variables/" + url.PathEscape(variableID) + "/values"
	if err := c.post(ctx, endpoint, c.token, body, nil); err != nil {
		c.metrics.incUploadErrCount()
		return fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	c.metrics.incUploadCount()
	c.lastSamples.Store(variableID, Sample{VariableID: variableID, Value: value, Timestamp: timestamp})

	c.logger.Debug("ubidots: value saved", "variable", variableID, "value", value, "timestamp", timestamp)

	return nil
}

// SaveCollection uploads every value of coll in a single request.
//
// An empty collection is sent as "[]"; the API's status decides the result.
func (c *Client) SaveCollection(ctx context.Context, coll *Collection) error {
	if coll == nil {
		coll = NewCollection(0)
	}

	body, err := json.Marshal(coll)
	if err != nil {
		c.metrics.incCollectionErrCount()
		return fmt.Errorf("%w: encode collection: %w", ErrUploadFailed, err)
	}

	if err := c.post(ctx, c.baseURL+"/collections/values", c.token, body, nil); err != nil {
		c.metrics.incCollectionErrCount()
		return fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	c.metrics.incCollectionCount()

	ts := c.now()
	for _, v := range coll.values {
		c.lastSamples.Store(v.Variable, Sample{VariableID: v.Variable, Value: v.Value, Timestamp: ts})
	}

	c.logger.Debug("ubidots: collection saved", "size", coll.Len())

	return nil
}

// post sends body as JSON with credential in the token header. When out is
// non-nil, a 2xx response body is decoded into it.
func (c *Client) post(ctx context.Context, endpoint string, credential string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(authTokenHeader, credential)

	rsp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(rsp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if rsp.StatusCode < 200 || rsp.StatusCode > 299 {
		return &StatusError{Method: req.Method, URL: endpoint, StatusCode: rsp.StatusCode}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// IsStatus reports whether err carries an HTTP response with the given status code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == code
	}

	return false
}
