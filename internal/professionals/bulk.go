package professionals

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"professionals-admin/internal/common/errors"
	"professionals-admin/internal/common/metrics"
	"professionals-admin/internal/dataprovider"
)

// NormalizeDrafts trims every field. It is pure and idempotent.
func NormalizeDrafts(drafts []Draft) []Draft {
	out := make([]Draft, len(drafts))
	for i, d := range drafts {
		out[i] = Draft{
			FullName:    strings.TrimSpace(d.FullName),
			Email:       strings.TrimSpace(d.Email),
			Phone:       strings.TrimSpace(d.Phone),
			CompanyName: strings.TrimSpace(d.CompanyName),
			JobTitle:    strings.TrimSpace(d.JobTitle),
			Source:      Source(strings.TrimSpace(string(d.Source))),
		}
	}
	return out
}

// EligibleDrafts keeps, in order, the drafts with a non-blank full name and a
// known source. Kept drafts are returned unchanged.
func (c *Client) EligibleDrafts(drafts []Draft) []Draft {
	out := make([]Draft, 0, len(drafts))
	for _, d := range drafts {
		if c.validate.Struct(d) == nil {
			out = append(out, d)
		}
	}
	return out
}

// SubmitBulk normalizes and filters drafts, then sends the eligible ones in a
// single request. Row-level failures are reported inside the result.
func (c *Client) SubmitBulk(ctx context.Context, drafts []Draft) (*BulkResult, error) {
	eligible := c.EligibleDrafts(NormalizeDrafts(drafts))
	if len(eligible) == 0 {
		return nil, errors.NewNoEligibleRowsError(len(drafts))
	}

	path := "/" + c.resource + "/bulk"
	resp, err := c.provider.Custom(ctx, dataprovider.CustomParams{
		URL:     path,
		Method:  http.MethodPost,
		Headers: map[string]string{"Accept": "application/json"},
		Payload: eligible,
	})
	if err != nil {
		return nil, err
	}

	var result BulkResult
	if raw := bytes.TrimSpace(resp.Raw); len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, errors.NewUnexpectedResponseError(path, err)
		}
	}

	for _, item := range result.Results {
		metrics.BulkRowsTotal.WithLabelValues(rowOutcome(item.Status)).Inc()
	}
	c.logger.Debug("bulk upsert submitted", map[string]interface{}{
		"submitted": len(eligible),
		"skipped":   len(drafts) - len(eligible),
		"created":   result.Created,
		"updated":   result.Updated,
		"failed":    result.Failed,
		"status":    resp.Status,
	})
	return &result, nil
}

// rowOutcome buckets a row status into a bounded metric label.
func rowOutcome(status string) string {
	switch s := strings.ToLower(status); s {
	case StatusCreated, StatusUpdated, StatusFailed:
		return s
	}
	return "other"
}
