// Package dataprovider implements the generic resource contract (list, create
// and custom calls) on top of the shared API client.
package dataprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	apihttp "professionals-admin/internal/common/http"
)

type Provider struct {
	client *apihttp.Client
}

func New(client *apihttp.Client) *Provider {
	return &Provider{client: client}
}

type Filter struct {
	Field    string
	Operator string
	Value    interface{}
}

type ListParams struct {
	Resource      string
	Filters       []Filter
	IncludeResume bool
}

// ListResult.Total is always len(Data); server-side totals are not read.
type ListResult struct {
	Data  []json.RawMessage `json:"data"`
	Total int               `json:"total"`
}

type Result struct {
	Status int
	Data   interface{}
	Raw    []byte
}

func (p *Provider) GetList(ctx context.Context, params ListParams) (*ListResult, error) {
	resp, err := p.client.Do(ctx, apihttp.Request{
		Method: http.MethodGet,
		Path:   "/" + params.Resource + "/",
		Name:   "/" + params.Resource,
		Query:  listQuery(params),
		Header: http.Header{apihttp.HeaderAccept: {apihttp.MediaTypeJSON}},
	})
	if err != nil {
		return nil, err
	}

	data := normalizeList(resp.Raw)
	return &ListResult{Data: data, Total: len(data)}, nil
}

func listQuery(params ListParams) url.Values {
	query := url.Values{}
	for _, f := range params.Filters {
		if f.Field != "source" || f.Operator != "eq" {
			continue
		}
		if value := filterValue(f.Value); value != "" {
			query.Set("source", value)
		}
		break
	}
	if params.IncludeResume {
		query.Set("include_resume", "true")
	}
	return query
}

func filterValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// normalizeList accepts a bare array or an object with a "results" array.
// Anything else is an empty page.
func normalizeList(raw []byte) []json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	list := []json.RawMessage{}
	if len(trimmed) == 0 {
		return list
	}

	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return []json.RawMessage{}
		}
	case '{':
		var wrapped struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return list
		}
		results := bytes.TrimSpace(wrapped.Results)
		if len(results) == 0 || results[0] != '[' {
			return list
		}
		if err := json.Unmarshal(results, &list); err != nil {
			return []json.RawMessage{}
		}
	}
	return list
}

// Create POSTs variables as JSON to /{resource}/. A nil payload is sent as {}.
func (p *Provider) Create(ctx context.Context, resource string, variables interface{}) (*Result, error) {
	if variables == nil {
		variables = map[string]interface{}{}
	}
	body, err := json.Marshal(variables)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", resource, err)
	}

	resp, err := p.client.Do(ctx, apihttp.Request{
		Method: http.MethodPost,
		Path:   "/" + resource + "/",
		Name:   "/" + resource,
		Header: http.Header{
			apihttp.HeaderContentType: {apihttp.MediaTypeJSON},
			apihttp.HeaderAccept:      {apihttp.MediaTypeJSON},
		},
		Body: bytes.NewReader(body),
	})
	if err != nil {
		return nil, err
	}
	return &Result{Status: resp.Status, Data: resp.Body, Raw: resp.Raw}, nil
}

type CustomParams struct {
	URL     string
	Method  string
	Headers map[string]string
	// Query entries with nil values are skipped.
	Query map[string]interface{}
	// Payload may be *FormData, an io.Reader, []byte, or any value to be
	// sent as JSON.
	Payload interface{}
}

func (p *Provider) Custom(ctx context.Context, params CustomParams) (*Result, error) {
	header := http.Header{}
	for k, v := range params.Headers {
		header.Set(k, v)
	}

	var query url.Values
	if len(params.Query) > 0 {
		query = url.Values{}
		for k, v := range params.Query {
			if v == nil {
				continue
			}
			query.Set(k, filterValue(v))
		}
	}

	body, err := encodePayload(params.Payload, header)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", params.URL, err)
	}

	method := strings.ToUpper(params.Method)
	if method == "" {
		method = http.MethodGet
	}

	resp, err := p.client.Do(ctx, apihttp.Request{
		Method: method,
		Path:   params.URL,
		Query:  query,
		Header: header,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Status: resp.Status, Data: resp.Body, Raw: resp.Raw}, nil
}

func encodePayload(payload interface{}, header http.Header) (io.Reader, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case *FormData:
		body, contentType, err := p.Encode()
		if err != nil {
			return nil, err
		}
		header.Set(apihttp.HeaderContentType, contentType)
		return body, nil
	case io.Reader:
		return p, nil
	case []byte:
		return bytes.NewReader(p), nil
	case string:
		return strings.NewReader(p), nil
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		if header.Get(apihttp.HeaderContentType) == "" {
			header.Set(apihttp.HeaderContentType, apihttp.MediaTypeJSON)
		}
		return bytes.NewReader(b), nil
	}
}
