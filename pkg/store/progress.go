package store

import "time"

// ProgressRecord is the externally visible snapshot of one generation
// request. The pipeline is its only writer; pollers only ever read it.
// Every write replaces the whole record, never individual fields.
type ProgressRecord struct {
	RequestId         string                 `json:"request_id"`
	Status            string                 `json:"status"`
	CompletedSections int                    `json:"completed_sections"`
	CurrentSection    int                    `json:"current_section"`
	TotalSections     int                    `json:"total_sections"`
	Error             *ProgressError         `json:"error,omitempty"`
	Data              map[string]interface{} `json:"data,omitempty"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// ProgressError carries a machine-usable reason code plus human detail.
type ProgressError struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

const (
	StatusPending           = "pending" // returned for unknown ids, never stored
	StatusStarting          = "starting"
	StatusContextExpansion  = "context_expansion"
	StatusGeneratingSection = "generating_section"
	StatusSectionComplete   = "section_complete"
	StatusFailed            = "failed"
	StatusComplete          = "complete"
)

// Error reason codes
const (
	ErrCodeBasicIntakeRequired    = "basic_intake_required"
	ErrCodeAdditionalInfoRequired = "additional_information_required"
	ErrCodeProviderError          = "provider_error"
	ErrCodeMalformedResponse      = "malformed_response"
)

// IsTerminal reports whether the record has reached a final state.
// Terminal records never transition again for the same request id.
func (r *ProgressRecord) IsTerminal() bool {
	return r.Status == StatusFailed || r.Status == StatusComplete
}

// Pending builds the well-defined default returned to pollers that arrive
// before the pipeline's first write (or after retention expired the entry).
func Pending(requestId string) *ProgressRecord {
	return &ProgressRecord{
		RequestId: requestId,
		Status:    StatusPending,
	}
}
