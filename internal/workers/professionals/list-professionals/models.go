package listprofessionals

import "professionals-admin/internal/professionals"

type Input struct {
	Source        string `json:"source,omitempty"`
	IncludeResume *bool  `json:"includeResume,omitempty"`
}

type Output struct {
	Professionals []professionals.Professional `json:"professionals"`
	Count         int                          `json:"count"`
}
