package professionals

import "strings"

// Resource is the collection name on the API.
const Resource = "professionals"

type Source string

const (
	SourceDirect   Source = "direct"
	SourcePartner  Source = "partner"
	SourceInternal Source = "internal"
)

var Sources = []Source{SourceDirect, SourcePartner, SourceInternal}

func (s Source) Valid() bool {
	switch s {
	case SourceDirect, SourcePartner, SourceInternal:
		return true
	}
	return false
}

func (s Source) String() string {
	return string(s)
}

// ParseSource accepts the three sources case-insensitively. "" and "all"
// mean no filter and return "".
func ParseSource(raw string) (Source, bool) {
	s := Source(strings.ToLower(strings.TrimSpace(raw)))
	if s == "" || s == "all" {
		return "", true
	}
	return s, s.Valid()
}

// Professional is a record as returned by the API. Unknown fields are ignored.
type Professional struct {
	ID            int64   `json:"id"`
	FullName      string  `json:"full_name"`
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	CompanyName   *string `json:"company_name,omitempty"`
	JobTitle      *string `json:"job_title,omitempty"`
	Source        Source  `json:"source"`
	ResumeURL     *string `json:"resume_url,omitempty"`
	ResumeSummary *string `json:"resume_summary,omitempty"`
	CreatedAt     *string `json:"created_at,omitempty"`
	UpdatedAt     *string `json:"updated_at,omitempty"`
}

func (p Professional) HasResume() bool {
	return p.ResumeURL != nil && *p.ResumeURL != ""
}

// Draft is one row of a bulk upsert before submission. Empty optional
// fields are omitted from the request body.
type Draft struct {
	FullName    string `json:"full_name" validate:"notblank"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	JobTitle    string `json:"job_title,omitempty"`
	Source      Source `json:"source" validate:"oneof=direct partner internal"`
}

// CreateInput is the single-record create form. Empty optional fields are
// sent as JSON null.
type CreateInput struct {
	FullName    string `json:"full_name" validate:"notblank"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
	JobTitle    string `json:"job_title"`
	Source      Source `json:"source" validate:"oneof=direct partner internal"`
}

type createPayload struct {
	FullName    string  `json:"full_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	CompanyName *string `json:"company_name"`
	JobTitle    *string `json:"job_title"`
	Source      Source  `json:"source"`
}

func (in CreateInput) payload() createPayload {
	return createPayload{
		FullName:    strings.TrimSpace(in.FullName),
		Email:       nullable(in.Email),
		Phone:       nullable(in.Phone),
		CompanyName: nullable(in.CompanyName),
		JobTitle:    nullable(in.JobTitle),
		Source:      in.Source,
	}
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
