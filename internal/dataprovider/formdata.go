package dataprovider

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// FormData is a multipart/form-data payload. Encode lets mime/multipart
// choose the boundary and the matching Content-Type.
type FormData struct {
	parts []formPart
}

type formPart struct {
	name        string
	filename    string
	contentType string
	value       string
	content     io.Reader
}

func NewFormData() *FormData {
	return &FormData{}
}

func (f *FormData) AddField(name, value string) {
	f.parts = append(f.parts, formPart{name: name, value: value})
}

func (f *FormData) AddFile(name, filename, contentType string, content io.Reader) {
	f.parts = append(f.parts, formPart{
		name:        name,
		filename:    filename,
		contentType: contentType,
		content:     content,
	})
}

// Len is the number of parts.
func (f *FormData) Len() int {
	return len(f.parts)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (f *FormData) Encode() (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, part := range f.parts {
		if part.content == nil {
			if err := w.WriteField(part.name, part.value); err != nil {
				return nil, "", fmt.Errorf("write field %s: %w", part.name, err)
			}
			continue
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(part.name), quoteEscaper.Replace(part.filename)))
		contentType := part.contentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", part.name, err)
		}
		if _, err := io.Copy(pw, part.content); err != nil {
			return nil, "", fmt.Errorf("copy part %s: %w", part.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}
