package bulkupsertprofessionals

import "professionals-admin/internal/professionals"

type DraftInput struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	JobTitle    string `json:"jobTitle,omitempty"`
	Source      string `json:"source"`
}

type Input struct {
	Drafts []DraftInput `json:"drafts"`
}

func (in *Input) toDrafts() []professionals.Draft {
	out := make([]professionals.Draft, len(in.Drafts))
	for i, d := range in.Drafts {
		out[i] = professionals.Draft{
			FullName:    d.FullName,
			Email:       d.Email,
			Phone:       d.Phone,
			CompanyName: d.CompanyName,
			JobTitle:    d.JobTitle,
			Source:      professionals.Source(d.Source),
		}
	}
	return out
}

// RowOutcome is one result row ready for display in a user task form.
type RowOutcome struct {
	Index     int                     `json:"index"`
	Status    string                  `json:"status"`
	Indicator professionals.Indicator `json:"indicator"`
	Error     string                  `json:"error,omitempty"`
}

type Output struct {
	BulkResult *professionals.BulkResult `json:"bulkResult"`
	Rows       []RowOutcome              `json:"rows"`
	Submitted  int                       `json:"submitted"`
	Skipped    int                       `json:"skipped"`
	Failed     int                       `json:"failed"`
}
