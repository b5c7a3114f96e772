package createprofessional

import "professionals-admin/internal/professionals"

// Input uses the process variable names. Optional fields may be null.
type Input struct {
	FullName    string  `json:"fullName"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	CompanyName *string `json:"companyName,omitempty"`
	JobTitle    *string `json:"jobTitle,omitempty"`
	Source      string  `json:"source"`
}

func (in *Input) toCreateInput() professionals.CreateInput {
	return professionals.CreateInput{
		FullName:    in.FullName,
		Email:       deref(in.Email),
		Phone:       deref(in.Phone),
		CompanyName: deref(in.CompanyName),
		JobTitle:    deref(in.JobTitle),
		Source:      professionals.Source(in.Source),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type Output struct {
	ProfessionalID int64                       `json:"professionalId"`
	Professional   *professionals.Professional `json:"professional"`
}
