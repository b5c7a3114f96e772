package http

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"professionals-admin/internal/common/errors"
	"professionals-admin/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		path     string
		expected string
	}{
		{"relative without slash", "http://localhost:8000/api", "professionals/", "http://localhost:8000/api/professionals/"},
		{"relative with slash", "http://localhost:8000/api", "/professionals/bulk", "http://localhost:8000/api/professionals/bulk"},
		{"base trailing slashes stripped", "http://localhost:8000/api///", "/professionals/", "http://localhost:8000/api/professionals/"},
		{"absolute http passes through", "http://localhost:8000/api", "http://other:9000/x", "http://other:9000/x"},
		{"absolute https passes through", "http://localhost:8000/api", "https://cdn.example.com/resume.pdf", "https://cdn.example.com/resume.pdf"},
		{"host:port is not a scheme", "http://localhost:8000/api", "localhost:9000/x", "http://localhost:8000/api/localhost:9000/x"},
		{"empty path", "http://localhost:8000/api/", "", "http://localhost:8000/api/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(Options{BaseURL: tt.base})
			assert.Equal(t, tt.expected, c.BuildURL(tt.path))
		})
	}
}

func TestParseBody(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected interface{}
	}{
		{"empty body is nil", "", nil},
		{"json object", `{"id":1}`, map[string]interface{}{"id": json.Number("1")}},
		{"json array", `[{"id":2}]`, []interface{}{map[string]interface{}{"id": json.Number("2")}}},
		{"json null", "null", nil},
		{"surrounding whitespace", " {\"ok\":true}\n", map[string]interface{}{"ok": true}},
		{"html error page", "<h1>Bad Gateway</h1>", map[string]interface{}{"raw": "<h1>Bad Gateway</h1>"}},
		{"trailing garbage", `{"id":1} trailing`, map[string]interface{}{"raw": `{"id":1} trailing`}},
		{"whitespace only", "  ", map[string]interface{}{"raw": "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseBody([]byte(tt.body)))
		})
	}
}

func TestClient_Do(t *testing.T) {
	var gotRequest *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequest = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1}]`))
	}))
	defer server.Close()

	c := NewClient(Options{BaseURL: server.URL + "/api/", Logger: logger.NewTestLogger(t)})

	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "professionals/",
		Query:  url.Values{"source": {"partner"}},
		Header: http.Header{HeaderAccept: {MediaTypeJSON}},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.True(t, resp.OK())
	assert.Equal(t, `[{"id":1}]`, string(resp.Raw))
	assert.Equal(t, "/api/professionals/", gotRequest.URL.Path)
	assert.Equal(t, "partner", gotRequest.URL.Query().Get("source"))
	assert.Equal(t, MediaTypeJSON, gotRequest.Header.Get(HeaderAccept))
	assert.NotEmpty(t, gotRequest.Header.Get(HeaderRequestID))
}

func TestClient_Do_NonSuccess(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		expectedBody interface{}
	}{
		{"json validation error", http.StatusBadRequest, `{"email":["Enter a valid email address."]}`,
			map[string]interface{}{"email": []interface{}{"Enter a valid email address."}}},
		{"plain text server error", http.StatusInternalServerError, "Internal Server Error",
			map[string]interface{}{"raw": "Internal Server Error"}},
		{"empty not found", http.StatusNotFound, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(Options{BaseURL: server.URL})
			resp, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/professionals/"})
			require.Error(t, err)
			require.NotNil(t, resp)

			var apiErr *errors.APIError
			require.True(t, stderrors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.expectedBody, apiErr.Body)
			assert.Equal(t, http.MethodPost, apiErr.Method)
			assert.True(t, strings.HasPrefix(err.Error(), "POST /professionals/ failed: "))
		})
	}
}

func TestClient_Do_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	calls := 0
	c := NewClient(Options{BaseURL: base, Transport: countingTransport{next: http.DefaultTransport, calls: &calls}})

	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/professionals/"})
	assert.Nil(t, resp)

	var apiErr *errors.APIError
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, 0, apiErr.Status)
	assert.NotNil(t, apiErr.Unwrap())
	assert.Equal(t, 1, calls, "requests are never retried")
}

type countingTransport struct {
	next  http.RoundTripper
	calls *int
}

func (c countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	*c.calls++
	return c.next.RoundTrip(r)
}
