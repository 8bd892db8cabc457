// Package errors provides severity-aware structured errors.
package errors

import "fmt"

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// QuoteError is a structured error with context. Engine operations collect
// these into results instead of raising them, so the calling layer can
// render them directly.
type QuoteError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	RecordType  string   `json:"record_type,omitempty"`
	Recoverable bool     `json:"recoverable"`
}

func (e *QuoteError) Error() string {
	if e.RecordType != "" {
		return fmt.Sprintf("[%s] %s: %s (record type: %s)", e.Severity, e.Code, e.Message, e.RecordType)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
}

// Error codes
const (
	ErrCodeEmptyTable          = "EMPTY_TABLE"
	ErrCodeMalformedTable      = "MALFORMED_TABLE"
	ErrCodeUnrecognizedDataset = "UNRECOGNIZED_DATASET"
	ErrCodeUnmappedField       = "UNMAPPED_FIELD"
	ErrCodeUnparseableIntent   = "UNPARSEABLE_INTENT"
	ErrCodeEmbedderUnavailable = "EMBEDDER_UNAVAILABLE"
	ErrCodeSKUNotFound         = "SKU_NOT_FOUND"
)

// NewEmptyTableError rejects an upload before any store mutation.
func NewEmptyTableError(detail string) *QuoteError {
	return &QuoteError{
		Code:        ErrCodeEmptyTable,
		Message:     fmt.Sprintf("table has no usable rows: %s", detail),
		Severity:    SeverityError,
		Recoverable: true,
	}
}

// NewUnrecognizedDatasetError asks the caller to supply a type hint.
func NewUnrecognizedDatasetError(headers string) *QuoteError {
	return &QuoteError{
		Code:        ErrCodeUnrecognizedDataset,
		Message:     fmt.Sprintf("could not determine record type from headers: %s", headers),
		Severity:    SeverityWarning,
		Recoverable: true,
	}
}

// NewUnmappedFieldError flags a canonical field no uploaded header could
// serve. Matching simply skips the field, so this is a warning.
func NewUnmappedFieldError(field string, recordType string) *QuoteError {
	return &QuoteError{
		Code:        ErrCodeUnmappedField,
		Message:     fmt.Sprintf("no uploaded header maps to field: %s", field),
		Severity:    SeverityWarning,
		RecordType:  recordType,
		Recoverable: true,
	}
}

// NewUnparseableIntentError reports an amendment instruction no rule matched.
func NewUnparseableIntentError(instruction string) *QuoteError {
	return &QuoteError{
		Code:        ErrCodeUnparseableIntent,
		Message:     fmt.Sprintf("could not interpret instruction: %q", instruction),
		Severity:    SeverityWarning,
		Recoverable: true,
	}
}

// NewEmbedderUnavailableError wraps a backend failure while the caller
// degrades to lexical strategies.
func NewEmbedderUnavailableError(err error) *QuoteError {
	return &QuoteError{
		Code:        ErrCodeEmbedderUnavailable,
		Message:     fmt.Sprintf("embedding backend unavailable: %v", err),
		Severity:    SeverityWarning,
		Recoverable: true,
	}
}

// NewSKUNotFoundError reports a quotation line referencing an unknown SKU.
func NewSKUNotFoundError(sku string) *QuoteError {
	return &QuoteError{
		Code:        ErrCodeSKUNotFound,
		Message:     fmt.Sprintf("no catalogue entry for SKU: %s", sku),
		Severity:    SeverityError,
		Recoverable: false,
	}
}
