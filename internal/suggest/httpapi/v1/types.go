package v1

type DescriptionRequest struct {
	Title string `json:"title" binding:"required,max=500"`
	// Type is task, meeting, department or general. Anything else is treated
	// as general.
	Type       string         `json:"type"`
	Context    map[string]any `json:"context"`
	Regenerate bool           `json:"regenerate"`
}

type DescriptionResponse struct {
	Suggestion   string   `json:"suggestion"`
	Alternatives []string `json:"alternatives"`
	Confidence   float64  `json:"confidence"`
}

type CompletionRequest struct {
	Text        string `json:"text" binding:"required,max=1000"`
	FieldType   string `json:"field_type"`
	ContextType string `json:"context_type"`
	// CursorPosition is a character offset into Text. When it falls inside
	// the text only the part before the cursor is completed.
	CursorPosition *int `json:"cursor_position" binding:"omitempty,min=0"`
}

type CompletionResponse struct {
	Completion string  `json:"completion"`
	FullText   string  `json:"full_text"`
	Confidence float64 `json:"confidence"`
}

type AlternativesRequest struct {
	Title string `json:"title" binding:"required,max=500"`
	Type  string `json:"type"`
}

type AlternativeItem struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type AlternativesResponse struct {
	Alternatives []AlternativeItem `json:"alternatives"`
}
