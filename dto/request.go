package dto

import "errors"

// ConfirmRequest carries the reviewer-approved field values for a CDR record,
// in the same shape the extraction result uses so a client can edit the
// returned mapping and send it straight back.
type ConfirmRequest struct {
	Fields map[string]FieldValue `json:"fields" binding:"required"`
}

func (r *ConfirmRequest) Validate() error {
	if len(r.Fields) == 0 {
		return errors.New("confirmed fields are required")
	}
	return nil
}

// APMExtractRequest asks for APM-style key/value extraction from a raw text
// block instead of an uploaded document.
type APMExtractRequest struct {
	Text string `json:"text"`
}
