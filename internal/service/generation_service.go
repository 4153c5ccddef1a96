package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-blueprint-be/internal/constant"
	"ai-blueprint-be/internal/dto"
	"ai-blueprint-be/internal/entity"
	"ai-blueprint-be/internal/pkg/logger"
	"ai-blueprint-be/internal/repository/contract"
	"ai-blueprint-be/internal/repository/memory"
	"ai-blueprint-be/pkg/llm"
	"ai-blueprint-be/pkg/reconcile"
	"ai-blueprint-be/pkg/store"

	"github.com/google/uuid"
)

// IGenerationService drives the blueprint generation pipeline.
//
// Submit accepts immediately: its only synchronous guarantee is that a
// progress record exists for the returned id before it returns. The
// pipeline itself runs on a detached goroutine whose sole coupling to the
// outside world is the progress store (plus the progress event bus).
type IGenerationService interface {
	Submit(ctx context.Context, request *dto.SubmitGenerationRequest) (*dto.SubmitGenerationResponse, error)
	Poll(ctx context.Context, requestId uuid.UUID) (*dto.GenerationProgressResponse, error)
}

type generationService struct {
	llmProvider  llm.LLMProvider
	progressRepo *memory.ProgressRepository
	reportRepo   contract.ReportRepository
	publisher    IPublisherService
	logger       logger.ILogger
}

func NewGenerationService(
	llmProvider llm.LLMProvider,
	progressRepo *memory.ProgressRepository,
	reportRepo contract.ReportRepository,
	publisher IPublisherService,
	sysLogger logger.ILogger,
) IGenerationService {
	return &generationService{
		llmProvider:  llmProvider,
		progressRepo: progressRepo,
		reportRepo:   reportRepo,
		publisher:    publisher,
		logger:       sysLogger,
	}
}

func (s *generationService) Submit(ctx context.Context, request *dto.SubmitGenerationRequest) (*dto.SubmitGenerationResponse, error) {
	requestId := uuid.New()

	normalize(request)

	s.write(&store.ProgressRecord{
		RequestId:     requestId.String(),
		Status:        store.StatusStarting,
		TotalSections: constant.TotalBlueprintSections,
	}, request)

	// Fire-and-forget: no handle is kept. Abandoning the request id simply
	// lets the run continue to a terminal state in the progress store.
	go s.run(requestId, request)

	return &dto.SubmitGenerationResponse{RequestId: requestId}, nil
}

// Poll returns the latest progress record for requestId, or the pending
// default when no record exists. Terminal records are only retained for the
// configured TTL; after eviction a once-complete id reads as pending again,
// so the persisted report (GET /report/v1/:id) is the durable source once a
// run has completed.
func (s *generationService) Poll(ctx context.Context, requestId uuid.UUID) (*dto.GenerationProgressResponse, error) {
	record, found := s.progressRepo.Get(requestId.String())
	if !found {
		// Pollers arriving before the first write (or after retention)
		// get a well-defined default, never an error.
		record = store.Pending(requestId.String())
	}
	return toProgressResponse(record), nil
}

// run executes the full state machine for one request. Every internal
// error is converted into a terminal failed record; nothing escapes.
func (s *generationService) run(requestId uuid.UUID, request *dto.SubmitGenerationRequest) {
	// Detached from the submitting request on purpose: there is no
	// external cancellation for a run once started.
	ctx := context.Background()
	id := requestId.String()

	if missing := missingBasicFields(request); len(missing) > 0 {
		s.fail(id, store.ErrCodeBasicIntakeRequired,
			"missing required intake fields: "+strings.Join(missing, ", "), request, 0, 0)
		return
	}

	profile := formatProfile(request)

	expandedContext := ""
	if !request.SkipContextExpansion {
		s.write(&store.ProgressRecord{
			RequestId:     id,
			Status:        store.StatusContextExpansion,
			TotalSections: constant.TotalBlueprintSections,
		}, request)

		prompt := fmt.Sprintf(constant.ContextExpansionPrompt, profile)
		raw, err := llm.Invoke(ctx, s.llmProvider, constant.BlueprintSystemInstruction, prompt, constant.ContextExpansionMaxTokens)
		if err != nil {
			s.fail(id, store.ErrCodeProviderError, err.Error(), request, 0, 0)
			return
		}

		parsed, err := reconcile.Object(raw)
		if err != nil {
			s.fail(id, store.ErrCodeMalformedResponse, err.Error(), request, 0, 0)
			return
		}

		if questions := stringSlice(parsed["additional_information_required"]); len(questions) > 0 {
			s.fail(id, store.ErrCodeAdditionalInfoRequired, strings.Join(questions, "; "), request, 0, 0)
			return
		}
		if v, ok := parsed["expanded_context"].(string); ok {
			expandedContext = v
		}
	}

	accumulator := make(map[string]interface{})

	for i, section := range constant.BlueprintSections {
		current := i + 1

		// Written BEFORE the call so a mid-flight poller can tell
		// "working on section 4" from "section 4 just finished".
		s.write(&store.ProgressRecord{
			RequestId:         id,
			Status:            store.StatusGeneratingSection,
			CurrentSection:    current,
			CompletedSections: i,
			TotalSections:     constant.TotalBlueprintSections,
		}, request)

		prompt := fmt.Sprintf(constant.SectionPrompt, current, section.Title, profile, expandedContext, section.Key)
		raw, err := llm.Invoke(ctx, s.llmProvider, constant.BlueprintSystemInstruction, prompt, constant.SectionMaxTokens)
		if err != nil {
			s.fail(id, store.ErrCodeProviderError, err.Error(), request, current, i)
			return
		}

		parsed, err := reconcile.Object(raw)
		if err != nil {
			s.fail(id, store.ErrCodeMalformedResponse, err.Error(), request, current, i)
			return
		}

		// Blind merge: if two sections ever emit the same key, the later
		// section wins.
		for k, v := range parsed {
			accumulator[k] = v
		}

		s.write(&store.ProgressRecord{
			RequestId:         id,
			Status:            store.StatusSectionComplete,
			CurrentSection:    current,
			CompletedSections: current,
			TotalSections:     constant.TotalBlueprintSections,
		}, request)
	}

	// Persisting the result and reporting completion are independent
	// responsibilities: a sink failure must not downgrade a successful
	// generation, the poller still gets the document from the record.
	persistFailed := false
	report := &entity.Report{
		Id:       requestId,
		FullName: request.FullName,
		Document: accumulator,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		persistFailed = true
		s.logger.Error("GenerationService", "Report persistence failed after successful generation", map[string]interface{}{
			"request_id": id,
			"error":      err.Error(),
		})
	}

	final := &store.ProgressRecord{
		RequestId:         id,
		Status:            store.StatusComplete,
		CurrentSection:    constant.TotalBlueprintSections,
		CompletedSections: constant.TotalBlueprintSections,
		TotalSections:     constant.TotalBlueprintSections,
		Data:              accumulator,
	}
	s.writeEvent(final, request, persistFailed)

	s.logger.Info("GenerationService", "Blueprint generation complete", map[string]interface{}{
		"request_id":     id,
		"sections":       constant.TotalBlueprintSections,
		"persist_failed": persistFailed,
	})
}

// fail writes the terminal failed record. currentSection/completedSections
// carry the point the run reached, so a poller can still tell which section
// broke the run (zero for failures before the section loop).
func (s *generationService) fail(requestId, code, detail string, request *dto.SubmitGenerationRequest, currentSection, completedSections int) {
	record := &store.ProgressRecord{
		RequestId:         requestId,
		Status:            store.StatusFailed,
		CurrentSection:    currentSection,
		CompletedSections: completedSections,
		TotalSections:     constant.TotalBlueprintSections,
		Error: &store.ProgressError{
			Code:   code,
			Detail: detail,
		},
	}
	s.write(record, request)

	s.logger.Warn("GenerationService", "Blueprint generation failed", map[string]interface{}{
		"request_id": requestId,
		"code":       code,
		"detail":     detail,
	})
}

func (s *generationService) write(record *store.ProgressRecord, request *dto.SubmitGenerationRequest) {
	s.writeEvent(record, request, false)
}

func (s *generationService) writeEvent(record *store.ProgressRecord, request *dto.SubmitGenerationRequest, persistFailed bool) {
	record.UpdatedAt = time.Now()
	s.progressRepo.Put(record)

	if s.publisher == nil {
		return
	}
	event := &dto.ProgressEventMessage{
		RequestId:         record.RequestId,
		Status:            record.Status,
		CompletedSections: record.CompletedSections,
		CurrentSection:    record.CurrentSection,
		TotalSections:     record.TotalSections,
		PersistFailed:     persistFailed,
	}
	if record.Error != nil {
		event.ErrorCode = record.Error.Code
	}
	if record.IsTerminal() {
		event.NotifyEmail = request.NotifyEmail
		event.FullName = request.FullName
	}
	if err := s.publisher.PublishProgress(event); err != nil {
		// Delivery is best effort; the progress store stays authoritative.
		s.logger.Warn("GenerationService", "Failed to publish progress event", map[string]interface{}{
			"request_id": record.RequestId,
			"error":      err.Error(),
		})
	}
}

// --- helpers ---

func normalize(request *dto.SubmitGenerationRequest) {
	request.FullName = strings.TrimSpace(request.FullName)
	request.CurrentRole = strings.TrimSpace(request.CurrentRole)
	request.PrimaryGoal = strings.TrimSpace(request.PrimaryGoal)
	request.NotifyEmail = strings.TrimSpace(request.NotifyEmail)
}

func missingBasicFields(request *dto.SubmitGenerationRequest) []string {
	var missing []string
	if request.FullName == "" {
		missing = append(missing, "full_name")
	}
	if request.CurrentRole == "" {
		missing = append(missing, "current_role")
	}
	if request.PrimaryGoal == "" {
		missing = append(missing, "primary_goal")
	}
	return missing
}

func formatProfile(request *dto.SubmitGenerationRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", request.FullName)
	fmt.Fprintf(&sb, "Current role: %s\n", request.CurrentRole)
	fmt.Fprintf(&sb, "Primary goal: %s\n", request.PrimaryGoal)
	if request.Age > 0 {
		fmt.Fprintf(&sb, "Age: %d\n", request.Age)
	}
	if len(request.Interests) > 0 {
		fmt.Fprintf(&sb, "Interests: %s\n", strings.Join(request.Interests, ", "))
	}
	if request.Constraints != "" {
		fmt.Fprintf(&sb, "Constraints: %s\n", request.Constraints)
	}
	if request.ExtraNotes != "" {
		fmt.Fprintf(&sb, "Notes: %s\n", request.ExtraNotes)
	}
	return sb.String()
}

func stringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func toProgressResponse(record *store.ProgressRecord) *dto.GenerationProgressResponse {
	resp := &dto.GenerationProgressResponse{
		RequestId:         record.RequestId,
		Status:            record.Status,
		CompletedSections: record.CompletedSections,
		CurrentSection:    record.CurrentSection,
		TotalSections:     record.TotalSections,
		Data:              record.Data,
	}
	if record.Error != nil {
		resp.Error = &dto.ProgressErrorDTO{
			Code:   record.Error.Code,
			Detail: record.Error.Detail,
		}
	}
	if !record.UpdatedAt.IsZero() {
		t := record.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}
