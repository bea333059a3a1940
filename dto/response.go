package dto

import "time"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// FieldValue is one extracted field in API form.
type FieldValue struct {
	Value      interface{} `json:"value"`
	Raw        string      `json:"raw"`
	Confidence float64     `json:"confidence"`
	Flags      []string    `json:"flags,omitempty"`
}

// Diagnostics surfaces what the extraction engine could not place.
type Diagnostics struct {
	Preamble          []string `json:"preamble,omitempty"`
	UnmatchedHeadings []string `json:"unmatched_headings,omitempty"`
	DuplicateFields   []string `json:"duplicate_fields,omitempty"`
	MissingRequired   []string `json:"missing_required,omitempty"`
	Notes             []string `json:"notes,omitempty"`
}

// CDRResponse is the extraction result for one document. ConfirmedFields is
// populated once a reviewer has approved the record and is the authoritative
// mapping from then on; Fields always keeps the machine extraction.
type CDRResponse struct {
	RecordID        uint                  `json:"record_id"`
	FileID          string                `json:"file_id"`
	Status          string                `json:"status"`
	Fields          map[string]FieldValue `json:"fields"`
	ConfirmedFields map[string]FieldValue `json:"confirmed_fields,omitempty"`
	Diagnostics     Diagnostics           `json:"diagnostics"`
	Confidence      float64               `json:"confidence"`
	Source          string                `json:"source"`
}

// UploadResponse is returned by POST /cdr/upload.
type UploadResponse struct {
	FileID   string       `json:"file_id"`
	Filename string       `json:"filename"`
	Size     int64        `json:"size"`
	Record   *CDRResponse `json:"record,omitempty"`
}

// FileResponse is returned by GET /files/:id.
type FileResponse struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename"`
	ContentType string       `json:"content_type"`
	Size        int64        `json:"size"`
	Source      string       `json:"source"`
	UploadedAt  time.Time    `json:"uploaded_at"`
	Record      *CDRResponse `json:"record,omitempty"`
}

// FileListResponse is one page of uploaded files, newest first.
type FileListResponse struct {
	Files  []FileResponse `json:"files"`
	Total  int64          `json:"total"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
}

// APMResponse is the key/value mapping recovered from an APM text block.
type APMResponse struct {
	Fields map[string]string `json:"fields"`
}
