// Package http is the single place requests to the professionals API are
// built, sent and decoded.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"professionals-admin/internal/common/errors"
	"professionals-admin/internal/common/logger"
	"professionals-admin/internal/common/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	HeaderAccept      = "Accept"
	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-ID"

	MediaTypeJSON = "application/json"
)

type Options struct {
	BaseURL string
	// Timeout of zero leaves deadlines to the transport and the caller's context.
	Timeout   time.Duration
	Transport http.RoundTripper
	Logger    logger.Logger
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(opts Options) *Client {
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		logger: log.WithFields(map[string]interface{}{"component": "api-client"}),
	}
}

// BuildURL returns path unchanged when it already carries a scheme,
// otherwise joins it onto the base with exactly one slash.
func (c *Client) BuildURL(path string) string {
	if hasScheme(path) {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func hasScheme(path string) bool {
	idx := strings.Index(path, "://")
	if idx <= 0 {
		return false
	}
	for i, r := range path[:idx] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// ParseBody never fails: an empty body is nil, JSON is decoded with numbers
// kept as json.Number, and anything else comes back as {"raw": text}.
func ParseBody(data []byte) interface{} {
	if len(data) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return map[string]interface{}{"raw": string(data)}
	}
	if _, err := dec.Token(); err != io.EOF {
		return map[string]interface{}{"raw": string(data)}
	}
	return v
}

type Request struct {
	Method string
	// Path is relative to the base URL unless it carries its own scheme.
	Path   string
	// Name labels the request in errors and defaults to Path.
	Name   string
	Query  url.Values
	Header http.Header
	Body   io.Reader
}

type Response struct {
	Status int
	Header http.Header
	Body   interface{}
	Raw    []byte
}

// Do sends the request once. Any non-2xx status is returned as
// *errors.APIError alongside the decoded response.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	if r.Name == "" {
		r.Name = r.Path
	}
	target := c.BuildURL(r.Path)
	if len(r.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + r.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, r.Body)
	if err != nil {
		return nil, errors.NewTransportError(r.Method, r.Name, err)
	}
	for key, values := range r.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.APIRequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(r.Method, metrics.StatusClass(0)).Inc()
		c.logger.Debug("api request failed", map[string]interface{}{
			"method":    r.Method,
			"url":       target,
			"requestId": req.Header.Get(HeaderRequestID),
			"error":     err.Error(),
		})
		return nil, errors.NewTransportError(r.Method, r.Name, err)
	}
	defer resp.Body.Close()

	metrics.APIRequestsTotal.WithLabelValues(r.Method, metrics.StatusClass(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.APIError{Method: r.Method, Path: r.Name, Status: resp.StatusCode, Err: err}
	}

	out := &Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   ParseBody(raw),
		Raw:    raw,
	}

	c.logger.Debug("api request", map[string]interface{}{
		"method":     r.Method,
		"url":        target,
		"status":     resp.StatusCode,
		"requestId":  req.Header.Get(HeaderRequestID),
		"durationMs": time.Since(start).Milliseconds(),
	})

	if !out.OK() {
		return out, errors.NewAPIError(r.Method, r.Name, out.Status, out.Body)
	}
	return out, nil
}

func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}
