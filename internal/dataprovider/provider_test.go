package dataprovider

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"professionals-admin/internal/common/errors"
	apihttp "professionals-admin/internal/common/http"
	"professionals-admin/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   []byte
}

func newTestProvider(t *testing.T, status int, body string) (*Provider, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   b,
		})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client := apihttp.NewClient(apihttp.Options{BaseURL: server.URL + "/api/", Logger: logger.NewTestLogger(t)})
	return New(client), &requests
}

// ==========================
// GetList
// ==========================

func TestProvider_GetList_Normalization(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		expectedData  []string
		expectedTotal int
	}{
		{"raw array", `[{"id":1,"full_name":"Ada"}]`, []string{`{"id":1,"full_name":"Ada"}`}, 1},
		{"wrapped results", `{"count":40,"results":[{"id":2}]}`, []string{`{"id":2}`}, 1},
		{"empty object", `{}`, []string{}, 0},
		{"results not an array", `{"results":{"id":3}}`, []string{}, 0},
		{"empty body", ``, []string{}, 0},
		{"non json body", `OK`, []string{}, 0},
		{"empty array", `[]`, []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestProvider(t, http.StatusOK, tt.body)

			result, err := p.GetList(context.Background(), ListParams{Resource: "professionals"})
			require.NoError(t, err)

			got := make([]string, len(result.Data))
			for i, item := range result.Data {
				got[i] = string(item)
			}
			assert.Equal(t, tt.expectedData, got)
			assert.Equal(t, tt.expectedTotal, result.Total)
			assert.Len(t, result.Data, result.Total)
		})
	}
}

func TestProvider_GetList_Query(t *testing.T) {
	tests := []struct {
		name          string
		params        ListParams
		expectedQuery map[string][]string
	}{
		{
			name:          "no filters",
			params:        ListParams{Resource: "professionals"},
			expectedQuery: map[string][]string{},
		},
		{
			name: "source equality filter",
			params: ListParams{Resource: "professionals", Filters: []Filter{
				{Field: "source", Operator: "eq", Value: "partner"},
			}},
			expectedQuery: map[string][]string{"source": {"partner"}},
		},
		{
			name: "empty source value is ignored",
			params: ListParams{Resource: "professionals", Filters: []Filter{
				{Field: "source", Operator: "eq", Value: ""},
			}},
			expectedQuery: map[string][]string{},
		},
		{
			name: "other operators are ignored",
			params: ListParams{Resource: "professionals", Filters: []Filter{
				{Field: "source", Operator: "ne", Value: "direct"},
				{Field: "full_name", Operator: "eq", Value: "Ada"},
			}},
			expectedQuery: map[string][]string{},
		},
		{
			name: "source and resume enrichment",
			params: ListParams{Resource: "professionals", IncludeResume: true, Filters: []Filter{
				{Field: "source", Operator: "eq", Value: "internal"},
			}},
			expectedQuery: map[string][]string{"source": {"internal"}, "include_resume": {"true"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, requests := newTestProvider(t, http.StatusOK, `[]`)

			_, err := p.GetList(context.Background(), tt.params)
			require.NoError(t, err)
			require.Len(t, *requests, 1)

			req := (*requests)[0]
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, "/api/professionals/", req.Path)
			assert.Equal(t, tt.expectedQuery, req.Query)
			assert.Equal(t, "application/json", req.Header.Get("Accept"))
		})
	}
}

func TestProvider_GetList_Error(t *testing.T) {
	p, requests := newTestProvider(t, http.StatusBadRequest, `{"source":["\"web\" is not a valid choice."]}`)

	result, err := p.GetList(context.Background(), ListParams{Resource: "professionals"})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Len(t, *requests, 1)

	var apiErr *errors.APIError
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, `GET /professionals failed: 400 {"source":["\"web\" is not a valid choice."]}`, err.Error())
}

// ==========================
// Create
// ==========================

func TestProvider_Create(t *testing.T) {
	p, requests := newTestProvider(t, http.StatusCreated, `{"id":7,"full_name":"Ada"}`)

	result, err := p.Create(context.Background(), "professionals", map[string]interface{}{"full_name": "Ada", "email": nil})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, result.Status)
	assert.JSONEq(t, `{"id":7,"full_name":"Ada"}`, string(result.Raw))

	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/professionals/", req.Path)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.JSONEq(t, `{"full_name":"Ada","email":null}`, string(req.Body))
}

func TestProvider_Create_NilPayloadSendsEmptyObject(t *testing.T) {
	p, requests := newTestProvider(t, http.StatusCreated, `{}`)

	_, err := p.Create(context.Background(), "professionals", nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string((*requests)[0].Body))
}

func TestProvider_Create_Error(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusBadRequest, `{"non_field_errors":["Either email or phone is required."]}`)

	_, err := p.Create(context.Background(), "professionals", map[string]interface{}{"full_name": "Ada"})

	var apiErr *errors.APIError
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, map[string]interface{}{
		"non_field_errors": []interface{}{"Either email or phone is required."},
	}, apiErr.Body)
	assert.Contains(t, err.Error(), "POST /professionals failed: 400")
}

// ==========================
// Custom
// ==========================

func TestProvider_Custom_JSONPayload(t *testing.T) {
	p, requests := newTestProvider(t, http.StatusOK, `{"ok":true}`)

	result, err := p.Custom(context.Background(), CustomParams{
		URL:     "/professionals/bulk",
		Method:  "post",
		Headers: map[string]string{"Accept": "application/json"},
		Query:   map[string]interface{}{"dry_run": true, "skip": nil},
		Payload: []map[string]string{{"full_name": "Ada", "source": "direct"}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"ok": true}, result.Data)

	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/professionals/bulk", req.Path)
	assert.Equal(t, map[string][]string{"dry_run": {"true"}}, req.Query)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.JSONEq(t, `[{"full_name":"Ada","source":"direct"}]`, string(req.Body))
}

func TestProvider_Custom_KeepsCallerContentType(t *testing.T) {
	p, requests := newTestProvider(t, http.StatusOK, ``)

	result, err := p.Custom(context.Background(), CustomParams{
		URL:     "/professionals/bulk",
		Method:  http.MethodPost,
		Headers: map[string]string{"Content-Type": "application/vnd.api+json"},
		Payload: map[string]string{"a": "b"},
	})
	require.NoError(t, err)
	assert.Nil(t, result.Data)
	assert.Equal(t, "application/vnd.api+json", (*requests)[0].Header.Get("Content-Type"))
}

func TestProvider_Custom_DefaultsToGet(t *testing.T) {
	p, requests := newTestProvider(t, http.StatusOK, `[]`)

	_, err := p.Custom(context.Background(), CustomParams{URL: "professionals/summary"})
	require.NoError(t, err)

	req := (*requests)[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Empty(t, req.Body)
	assert.Empty(t, req.Header.Get("Content-Type"))
}

func TestProvider_Custom_Error(t *testing.T) {
	p, _ := newTestProvider(t, http.StatusInternalServerError, `Server Error`)

	_, err := p.Custom(context.Background(), CustomParams{URL: "/professionals/9/resume", Method: http.MethodPost})
	require.Error(t, err)
	assert.Equal(t, `POST /professionals/9/resume failed: 500 {"raw":"Server Error"}`, err.Error())
}

func TestProvider_Custom_FormData(t *testing.T) {
	p, requests := newTestProvider(t, http.StatusOK, `{"resume_url":"/media/resumes/cv.pdf"}`)

	form := NewFormData()
	form.AddFile("file", "cv.pdf", "application/pdf", strings.NewReader("%PDF-1.4 test"))

	_, err := p.Custom(context.Background(), CustomParams{
		URL:     "/professionals/3/resume",
		Method:  http.MethodPost,
		Payload: form,
	})
	require.NoError(t, err)

	req := (*requests)[0]
	contentType := req.Header.Get("Content-Type")
	assert.True(t, strings.HasPrefix(contentType, "multipart/form-data; boundary="))
	assert.Contains(t, string(req.Body), `name="file"; filename="cv.pdf"`)
	assert.Contains(t, string(req.Body), "%PDF-1.4 test")
	assert.False(t, json.Valid(req.Body), "multipart payloads are never JSON encoded")
}

func TestFormData_Encode(t *testing.T) {
	form := NewFormData()
	form.AddField("note", "hello")
	form.AddFile("file", `we"ird.pdf`, "", strings.NewReader("data"))
	assert.Equal(t, 2, form.Len())

	body, contentType, err := form.Encode()
	require.NoError(t, err)

	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(contentType, "multipart/form-data; boundary="))
	assert.Contains(t, string(raw), `filename="we\"ird.pdf"`)
	assert.Contains(t, string(raw), "Content-Type: application/octet-stream")
	assert.Contains(t, string(raw), "hello")
}
