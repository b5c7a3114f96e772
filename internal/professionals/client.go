// Package professionals is the typed data-access contract for professional
// records: listing, single create, bulk upsert and résumé upload.
package professionals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"professionals-admin/internal/common/errors"
	"professionals-admin/internal/common/logger"
	"professionals-admin/internal/common/validation"
	"professionals-admin/internal/dataprovider"

	"github.com/go-playground/validator/v10"
)

type Client struct {
	provider *dataprovider.Provider
	resource string
	validate *validator.Validate
	logger   logger.Logger
}

type Option func(*Client)

// WithResource overrides the collection name, "professionals" by default.
func WithResource(resource string) Option {
	return func(c *Client) {
		if r := strings.Trim(resource, "/"); r != "" {
			c.resource = r
		}
	}
}

func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.logger = log
		}
	}
}

func NewClient(provider *dataprovider.Provider, opts ...Option) *Client {
	c := &Client{
		provider: provider,
		resource: Resource,
		validate: validation.New(),
		logger:   logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Resource() string {
	return c.resource
}

type ListOptions struct {
	// Source restricts the list; empty means every source.
	Source        Source
	IncludeResume bool
}

// List returns the single page the API sends back.
func (c *Client) List(ctx context.Context, opts ListOptions) ([]Professional, error) {
	if opts.Source != "" && !opts.Source.Valid() {
		return nil, errors.NewInvalidSourceError(string(opts.Source))
	}

	params := dataprovider.ListParams{Resource: c.resource, IncludeResume: opts.IncludeResume}
	if opts.Source != "" {
		params.Filters = []dataprovider.Filter{{Field: "source", Operator: "eq", Value: string(opts.Source)}}
	}

	result, err := c.provider.GetList(ctx, params)
	if err != nil {
		return nil, err
	}

	out := make([]Professional, 0, result.Total)
	for i, raw := range result.Data {
		var p Professional
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, errors.NewUnexpectedResponseError("/"+c.resource, fmt.Errorf("item %d: %w", i, err))
		}
		out = append(out, p)
	}

	c.logger.Debug("listed professionals", map[string]interface{}{
		"source":        string(opts.Source),
		"includeResume": opts.IncludeResume,
		"count":         len(out),
	})
	return out, nil
}

// Create validates the required fields locally, then POSTs the record.
func (c *Client) Create(ctx context.Context, in CreateInput) (*Professional, error) {
	if result := validation.ValidateStruct(c.validate, in); !result.Valid {
		return nil, errors.NewInputValidationError(strings.Join(result.GetErrorMessages(), "; "))
	}

	result, err := c.provider.Create(ctx, c.resource, in.payload())
	if err != nil {
		return nil, err
	}

	// A 2xx without a body (204) is still a successful create.
	var created Professional
	if raw := bytes.TrimSpace(result.Raw); len(raw) > 0 {
		if err := json.Unmarshal(raw, &created); err != nil {
			return nil, errors.NewUnexpectedResponseError("/"+c.resource, err)
		}
	}

	c.logger.Debug("created professional", map[string]interface{}{"id": created.ID})
	return &created, nil
}
