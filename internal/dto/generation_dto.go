package dto

import (
	"time"

	"github.com/google/uuid"
)

// SubmitGenerationRequest carries the intake profile used to build every
// prompt of the run. The basic fields are checked by the pipeline itself
// (fail-fast into a failed progress record), NOT by request validation,
// so pollers get the same error surface regardless of how the run failed.
type SubmitGenerationRequest struct {
	FullName    string   `json:"full_name"`
	CurrentRole string   `json:"current_role"`
	PrimaryGoal string   `json:"primary_goal"`
	Age         int      `json:"age,omitempty" validate:"omitempty,gte=13,lte=120"`
	Interests   []string `json:"interests,omitempty" validate:"max=20"`
	Constraints string   `json:"constraints,omitempty" validate:"max=2000"`
	ExtraNotes  string   `json:"extra_notes,omitempty" validate:"max=4000"`

	// SkipContextExpansion is set when this submission is itself the
	// answer to a prior additional_information_required round.
	SkipContextExpansion bool `json:"skip_context_expansion"`

	// NotifyEmail, when present, receives a completion email.
	NotifyEmail string `json:"notify_email,omitempty" validate:"omitempty,email"`
}

type SubmitGenerationResponse struct {
	RequestId uuid.UUID `json:"request_id"`
}

type GenerationProgressResponse struct {
	RequestId         string                 `json:"request_id"`
	Status            string                 `json:"status"`
	CompletedSections int                    `json:"completed_sections"`
	CurrentSection    int                    `json:"current_section"`
	TotalSections     int                    `json:"total_sections"`
	Error             *ProgressErrorDTO      `json:"error,omitempty"`
	Data              map[string]interface{} `json:"data,omitempty"`
	UpdatedAt         *time.Time             `json:"updated_at,omitempty"`
}

type ProgressErrorDTO struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

type ReportResponse struct {
	Id        uuid.UUID              `json:"id"`
	FullName  string                 `json:"full_name"`
	Document  map[string]interface{} `json:"document"`
	CreatedAt time.Time              `json:"created_at"`
}

// ProgressEventMessage is the payload fanned out on the in-process bus
// after every progress-store write, consumed by the websocket hub relay
// and the completion notifier.
type ProgressEventMessage struct {
	RequestId         string `json:"request_id"`
	Status            string `json:"status"`
	CompletedSections int    `json:"completed_sections"`
	CurrentSection    int    `json:"current_section"`
	TotalSections     int    `json:"total_sections"`
	ErrorCode         string `json:"error_code,omitempty"`
	NotifyEmail       string `json:"notify_email,omitempty"`
	FullName          string `json:"full_name,omitempty"`
	PersistFailed     bool   `json:"persist_failed,omitempty"`
}
