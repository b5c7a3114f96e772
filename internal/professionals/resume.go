package professionals

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"professionals-admin/internal/common/errors"
	"professionals-admin/internal/dataprovider"
)

const (
	PDFContentType = "application/pdf"

	// ResumeFormField is the multipart part name the API reads the file from.
	ResumeFormField = "file"

	SummaryPreviewLength = 240
)

// ResumeFile is a file chosen for upload. ContentType is the declared media
// type and is checked as given; the content is not sniffed here.
type ResumeFile struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// UploadResume sends a PDF as the single "file" part of a multipart body.
// Non-PDF files are rejected before any request is made. The caller should
// re-fetch the record to see the new résumé fields.
func (c *Client) UploadResume(ctx context.Context, id int64, file ResumeFile) (*dataprovider.Result, error) {
	if file.Content == nil {
		return nil, errors.NewMissingFileError()
	}
	if file.ContentType != PDFContentType {
		return nil, errors.NewInvalidFileTypeError(file.ContentType)
	}

	form := dataprovider.NewFormData()
	form.AddFile(ResumeFormField, file.Name, file.ContentType, file.Content)

	result, err := c.provider.Custom(ctx, dataprovider.CustomParams{
		URL:     fmt.Sprintf("/%s/%d/resume", c.resource, id),
		Method:  http.MethodPost,
		Payload: form,
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("uploaded resume", map[string]interface{}{
		"id":       id,
		"fileName": file.Name,
		"status":   result.Status,
	})
	return result, nil
}

// SummaryPreview shortens a résumé summary to at most limit runes, trimmed and
// followed by an ellipsis when cut.
func SummaryPreview(summary string, limit int) string {
	runes := []rune(summary)
	if limit < 0 || len(runes) <= limit {
		return summary
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
