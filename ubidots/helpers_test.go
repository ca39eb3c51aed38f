package ubidots

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testAPIKey = "3d08eb13f058278570b22e031547f9d03134a814"
	testToken  = "tok-123"
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// fakeAPI is a minimal Ubidots API double.
type fakeAPI struct {
	*httptest.Server

	mu          sync.Mutex
	requests    []recordedRequest
	authStatus  int
	authBody    string
	valueStatus int
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{
		authStatus:  http.StatusCreated,
		authBody:    `{"token": "` + testToken + `"}`,
		valueStatus: http.StatusCreated,
	}
	api.Server = httptest.NewServer(http.HandlerFunc(api.handle))
	t.Cleanup(api.Close)

	return api
}

func (api *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	api.mu.Lock()
	api.requests = append(api.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.EscapedPath(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	authStatus, authBody, valueStatus := api.authStatus, api.authBody, api.valueStatus
	api.mu.Unlock()

	if r.URL.Path == "/auth/token" {
		w.WriteHeader(authStatus)
		_, _ = io.WriteString(w, authBody)

		return
	}

	if r.Header.Get("X-Auth-Token") != testToken {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	w.WriteHeader(valueStatus)
	_, _ = io.WriteString(w, `{}`)
}

func (api *fakeAPI) setAuth(status int, body string) {
	api.mu.Lock()
	defer api.mu.Unlock()

	api.authStatus = status
	api.authBody = body
}

func (api *fakeAPI) setValueStatus(status int) {
	api.mu.Lock()
	defer api.mu.Unlock()

	api.valueStatus = status
}

func (api *fakeAPI) Requests() []recordedRequest {
	api.mu.Lock()
	defer api.mu.Unlock()

	return append([]recordedRequest(nil), api.requests...)
}

func (api *fakeAPI) lastRequest(t *testing.T) recordedRequest {
	t.Helper()

	reqs := api.Requests()
	require.NotEmpty(t, reqs)

	return reqs[len(reqs)-1]
}

func newTestClient(t *testing.T, api *fakeAPI, opts ...Option) *Client {
	t.Helper()

	opts = append([]Option{WithBaseURL(api.URL)}, opts...)
	c, err := NewClient(context.Background(), testAPIKey, opts...)
	require.NoError(t, err)

	return c
}

func decodeJSON(t *testing.T, data []byte) any {
	t.Helper()

	var v any
	require.NoError(t, json.Unmarshal(data, &v))

	return v
}
