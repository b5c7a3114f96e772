package uploadresume

type Input struct {
	ProfessionalID int64  `json:"professionalId"`
	FileName       string `json:"fileName,omitempty"`
	// ContentType is the declared media type. When empty it is detected from
	// the content.
	ContentType   string `json:"contentType,omitempty"`
	ContentBase64 string `json:"contentBase64"`
}

type Output struct {
	ResumeUploaded bool        `json:"resumeUploaded"`
	HTTPStatus     int         `json:"httpStatus"`
	Response       interface{} `json:"resumeResponse,omitempty"`
}
