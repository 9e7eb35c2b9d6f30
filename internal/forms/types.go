package forms

// FormInfo represents metadata about a Google Form
type FormInfo struct {
	// FormID is the unique identifier for the form
	FormID string `json:"formId"`

	// Title is the visible form title
	Title string `json:"title"`

	// DocumentTitle is the name of the form document in Drive
	DocumentTitle string `json:"documentTitle,omitempty"`

	// Description is the form description shown to respondents
	Description string `json:"description,omitempty"`

	// ResponderURI is the link respondents use to fill in the form
	ResponderURI string `json:"responderUri"`

	// ItemCount is the number of items (questions, sections) in the form
	ItemCount int `json:"itemCount,omitempty"`
}

// ResponseInfo represents a single submitted form response
type ResponseInfo struct {
	// ResponseID is the unique identifier for the response
	ResponseID string `json:"responseId"`

	// CreateTime is when the response was first submitted (RFC 3339)
	CreateTime string `json:"createTime,omitempty"`

	// LastSubmittedTime is when the response was last updated (RFC 3339)
	LastSubmittedTime string `json:"lastSubmittedTime,omitempty"`

	// RespondentEmail is the respondent's email, if the form collects it
	RespondentEmail string `json:"respondentEmail,omitempty"`

	// Answers maps question IDs to the submitted text answers
	Answers map[string][]string `json:"answers,omitempty"`
}
