package extraction

import "strings"

// SourceKind records how the raw text of a document was produced.
// OCR output carries lower trust and gets the lenient normalization path.
type SourceKind string

const (
	SourceNative SourceKind = "native"
	SourceOCR    SourceKind = "ocr"
)

// RawDocumentText is the full text extracted from one uploaded document,
// split into its original lines. It is immutable once produced; every
// pipeline stage returns a new value instead of mutating it.
type RawDocumentText struct {
	Lines  []string   `json:"lines"`
	Source SourceKind `json:"source"`
}

// NewDocument builds a RawDocumentText from a text blob, normalizing line
// endings but nothing else.
func NewDocument(text string, source SourceKind) RawDocumentText {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if text == "" {
		return RawDocumentText{Source: source}
	}
	return RawDocumentText{
		Lines:  strings.Split(text, "\n"),
		Source: source,
	}
}

// Text joins the document lines back into a single blob.
func (d RawDocumentText) Text() string {
	return strings.Join(d.Lines, "\n")
}

// Empty reports whether the document contains no visible text at all.
func (d RawDocumentText) Empty() bool {
	for _, line := range d.Lines {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}
