package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ai-blueprint-be/internal/constant"
	"ai-blueprint-be/internal/dto"
	"ai-blueprint-be/internal/entity"
	"ai-blueprint-be/internal/repository/memory"
	"ai-blueprint-be/pkg/llm"
	"ai-blueprint-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// mockProvider scripts provider responses per call index (1-based).
type mockProvider struct {
	mu      sync.Mutex
	calls   int
	respond func(call int, history []llm.Message) (string, error)
}

func (m *mockProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.mu.Unlock()
	return m.respond(call, history)
}

func (m *mockProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return m.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}})
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// stubReportRepo records the last Create and can be told to fail.
type stubReportRepo struct {
	mu        sync.Mutex
	created   *entity.Report
	createErr error
}

func (r *stubReportRepo) Create(ctx context.Context, report *entity.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.created = report
	return nil
}

func (r *stubReportRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.created != nil && r.created.Id == id {
		return r.created, nil
	}
	return nil, errors.New("not found")
}

func (r *stubReportRepo) lastCreated() *entity.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}

// recordingPublisher captures the event stream in publish order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []dto.ProgressEventMessage
}

func (p *recordingPublisher) PublishProgress(event *dto.ProgressEventMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return nil
}

func (p *recordingPublisher) snapshot() []dto.ProgressEventMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]dto.ProgressEventMessage, len(p.events))
	copy(out, p.events)
	return out
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newTestService(provider llm.LLMProvider, reportRepo *stubReportRepo, publisher IPublisherService) (IGenerationService, *memory.ProgressRepository) {
	progressRepo := memory.NewProgressRepository(time.Hour)
	svc := NewGenerationService(provider, progressRepo, reportRepo, publisher, nopLogger{})
	return svc, progressRepo
}

func validRequest() *dto.SubmitGenerationRequest {
	return &dto.SubmitGenerationRequest{
		FullName:    "Alex Rivera",
		CurrentRole: "Backend Engineer",
		PrimaryGoal: "Move into engineering management",
	}
}

// sectionPayload is what a well-behaved model returns for section n,
// wrapped in a markdown fence the way real models tend to.
func sectionPayload(n int) string {
	key := constant.BlueprintSections[n-1].Key
	return fmt.Sprintf("```json\n{\"%s\": {\"summary\": \"content %d\"}}\n```", key, n)
}

const expansionPayload = "```json\n{\"expanded_context\": \"Mid-career engineer aiming for management.\"}\n```"

// waitTerminal polls until the record reaches a terminal status.
func waitTerminal(t *testing.T, svc IGenerationService, id uuid.UUID) *dto.GenerationProgressResponse {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := svc.Poll(context.Background(), id)
		assert.NoError(t, err)
		if resp.Status == store.StatusComplete || resp.Status == store.StatusFailed {
			return resp
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("run never reached a terminal status")
	return nil
}

func TestPollUnknownIdReturnsPending(t *testing.T) {
	svc, _ := newTestService(&mockProvider{}, &stubReportRepo{}, nil)

	resp, err := svc.Poll(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, store.StatusPending, resp.Status)
	assert.Equal(t, 0, resp.CompletedSections)
	assert.Equal(t, 0, resp.CurrentSection)
	assert.Nil(t, resp.Error)
}

func TestSubmitWritesRecordBeforeReturning(t *testing.T) {
	// Block the provider so the run cannot progress past starting.
	release := make(chan struct{})
	provider := &mockProvider{respond: func(call int, history []llm.Message) (string, error) {
		<-release
		return "", errors.New("aborted")
	}}
	defer close(release)

	svc, repo := newTestService(provider, &stubReportRepo{}, nil)

	resp, err := svc.Submit(context.Background(), validRequest())
	assert.NoError(t, err)

	record, found := repo.Get(resp.RequestId.String())
	assert.True(t, found, "record must exist the moment Submit returns")
	assert.NotEqual(t, store.StatusPending, record.Status)
}

func TestMissingIntakeFailsWithoutProviderCall(t *testing.T) {
	provider := &mockProvider{respond: func(call int, history []llm.Message) (string, error) {
		return expansionPayload, nil
	}}
	svc, _ := newTestService(provider, &stubReportRepo{}, nil)

	resp, err := svc.Submit(context.Background(), &dto.SubmitGenerationRequest{
		FullName: "   ", // whitespace only, normalized to empty
	})
	assert.NoError(t, err, "submission itself always succeeds")

	final := waitTerminal(t, svc, resp.RequestId)
	assert.Equal(t, store.StatusFailed, final.Status)
	if assert.NotNil(t, final.Error) {
		assert.Equal(t, store.ErrCodeBasicIntakeRequired, final.Error.Code)
		assert.Contains(t, final.Error.Detail, "full_name")
		assert.Contains(t, final.Error.Detail, "current_role")
		assert.Contains(t, final.Error.Detail, "primary_goal")
	}
	assert.Equal(t, 0, provider.callCount(), "intake failure must precede any model call")
}

func TestAdditionalInformationRequired(t *testing.T) {
	provider := &mockProvider{respond: func(call int, history []llm.Message) (string, error) {
		return `{"expanded_context": "", "additional_information_required": ["What is your target timeline?"]}`, nil
	}}
	svc, _ := newTestService(provider, &stubReportRepo{}, nil)

	resp, _ := svc.Submit(context.Background(), validRequest())

	final := waitTerminal(t, svc, resp.RequestId)
	assert.Equal(t, store.StatusFailed, final.Status)
	if assert.NotNil(t, final.Error) {
		assert.Equal(t, store.ErrCodeAdditionalInfoRequired, final.Error.Code)
		assert.Contains(t, final.Error.Detail, "target timeline")
	}
	assert.Equal(t, 1, provider.callCount(), "no section call after expansion asks questions")
}

func TestProviderErrorFailsRun(t *testing.T) {
	provider := &mockProvider{respond: func(call int, history []llm.Message) (string, error) {
		if call == 1 {
			return expansionPayload, nil
		}
		return "", errors.New("upstream 503")
	}}
	repo := &stubReportRepo{}
	svc, _ := newTestService(provider, repo, nil)

	resp, _ := svc.Submit(context.Background(), validRequest())

	final := waitTerminal(t, svc, resp.RequestId)
	assert.Equal(t, store.StatusFailed, final.Status)
	if assert.NotNil(t, final.Error) {
		assert.Equal(t, store.ErrCodeProviderError, final.Error.Code)
		assert.Contains(t, final.Error.Detail, "upstream 503")
	}
	assert.Nil(t, repo.lastCreated(), "failed runs never reach the sink")
}

func TestFailureKeepsSectionProgress(t *testing.T) {
	// Expansion and sections 1-3 succeed, section 4 errors out.
	provider := &mockProvider{respond: func(call int, history []llm.Message) (string, error) {
		if call == 1 {
			return expansionPayload, nil
		}
		if call < 5 {
			return sectionPayload(call - 1), nil
		}
		return "", errors.New("upstream 503")
	}}
	svc, _ := newTestService(provider, &stubReportRepo{}, nil)

	resp, _ := svc.Submit(context.Background(), validRequest())

	final := waitTerminal(t, svc, resp.RequestId)
	assert.Equal(t, store.StatusFailed, final.Status)
	assert.Equal(t, 4, final.CurrentSection, "failed record names the section that broke")
	assert.Equal(t, 3, final.CompletedSections)
}

func TestMalformedResponseFailsRun(t *testing.T) {
	provider := &mockProvider{respond: func(call int, history []llm.Message) (string, error) {
		if call == 1 {
			return expansionPayload, nil
		}
		return "Sure! Here is your section without any JSON.", nil
	}}
	svc, _ := newTestService(provider, &stubReportRepo{}, nil)

	resp, _ := svc.Submit(context.Background(), validRequest())

	final := waitTerminal(t, svc, resp.RequestId)
	assert.Equal(t, store.StatusFailed, final.Status)
	if assert.NotNil(t, final.Error) {
		assert.Equal(t, store.ErrCodeMalformedResponse, final.Error.Code)
	}
}

func TestFullRunMergesAllSections(t *testing.T) {
	provider := &mockProvider{respond: func(call int, history []llm.Message) (string, error) {
		if call == 1 {
			return expansionPayload, nil
		}
		return sectionPayload(call - 1), nil
	}}
	repo := &stubReportRepo{}
	publisher := &recordingPublisher{}
	svc, _ := newTestService(provider, repo, publisher)

	request := validRequest()
	request.NotifyEmail = "alex@example.com"
	resp, _ := svc.Submit(context.Background(), request)

	final := waitTerminal(t, svc, resp.RequestId)
	assert.Equal(t, store.StatusComplete, final.Status)
	assert.Equal(t, constant.TotalBlueprintSections, final.CompletedSections)
	assert.Equal(t, constant.TotalBlueprintSections, final.CurrentSection)
	assert.Nil(t, final.Error)
	assert.Equal(t, 1+constant.TotalBlueprintSections, provider.callCount())

	// Every section key lands in the merged document.
	assert.Len(t, final.Data, constant.TotalBlueprintSections)
	for _, section := range constant.BlueprintSections {
		assert.Contains(t, final.Data, section.Key)
	}

	// Sink received the same document under the request id.
	created := repo.lastCreated()
	if assert.NotNil(t, created) {
		assert.Equal(t, resp.RequestId, created.Id)
		assert.Equal(t, "Alex Rivera", created.FullName)
		assert.Len(t, created.Document, constant.TotalBlueprintSections)
	}

	// The event stream is monotonic and ends terminal.
	events := publisher.snapshot()
	assert.NotEmpty(t, events)
	prev := 0
	for _, e := range events {
		assert.GreaterOrEqual(t, e.CompletedSections, prev, "completed_sections must never decrease")
		prev = e.CompletedSections
	}
	last := events[len(events)-1]
	assert.Equal(t, store.StatusComplete, last.Status)
	assert.Equal(t, "alex@example.com", last.NotifyEmail, "terminal event carries the notification target")
	assert.False(t, last.PersistFailed)

	// Non-terminal events never leak the notification target.
	for _, e := range events[:len(events)-1] {
		assert.Empty(t, e.NotifyEmail)
	}
}

func TestSkipContextExpansion(t *testing.T) {
	provider := &mockProvider{respond: func(call int, history []llm.Message) (string, error) {
		return sectionPayload(call), nil
	}}
	svc, _ := newTestService(provider, &stubReportRepo{}, nil)

	request := validRequest()
	request.SkipContextExpansion = true
	resp, _ := svc.Submit(context.Background(), request)

	final := waitTerminal(t, svc, resp.RequestId)
	assert.Equal(t, store.StatusComplete, final.Status)
	assert.Equal(t, constant.TotalBlueprintSections, provider.callCount(), "expansion call must be skipped")
}

func TestLaterSectionWinsOnKeyCollision(t *testing.T) {
	provider := &mockProvider{respond: func(call int, history []llm.Message) (string, error) {
		// Every section emits the same key with its own value.
		return fmt.Sprintf(`{"shared": "from section %d"}`, call), nil
	}}
	svc, _ := newTestService(provider, &stubReportRepo{}, nil)

	request := validRequest()
	request.SkipContextExpansion = true
	resp, _ := svc.Submit(context.Background(), request)

	final := waitTerminal(t, svc, resp.RequestId)
	assert.Equal(t, store.StatusComplete, final.Status)
	assert.Len(t, final.Data, 1)
	assert.Equal(t, fmt.Sprintf("from section %d", constant.TotalBlueprintSections), final.Data["shared"])
}

func TestPersistFailureDoesNotDowngradeCompletion(t *testing.T) {
	provider := &mockProvider{respond: func(call int, history []llm.Message) (string, error) {
		return sectionPayload(call), nil
	}}
	repo := &stubReportRepo{createErr: errors.New("db down")}
	publisher := &recordingPublisher{}
	svc, _ := newTestService(provider, repo, publisher)

	request := validRequest()
	request.SkipContextExpansion = true
	resp, _ := svc.Submit(context.Background(), request)

	final := waitTerminal(t, svc, resp.RequestId)
	assert.Equal(t, store.StatusComplete, final.Status, "sink failure must not fail the run")
	assert.NotNil(t, final.Data, "poller still gets the document from the record")

	events := publisher.snapshot()
	last := events[len(events)-1]
	assert.Equal(t, store.StatusComplete, last.Status)
	assert.True(t, last.PersistFailed)
}

func TestTerminalRecordIsFinal(t *testing.T) {
	provider := &mockProvider{respond: func(call int, history []llm.Message) (string, error) {
		return sectionPayload(call), nil
	}}
	svc, _ := newTestService(provider, &stubReportRepo{}, nil)

	request := validRequest()
	request.SkipContextExpansion = true
	resp, _ := svc.Submit(context.Background(), request)

	first := waitTerminal(t, svc, resp.RequestId)

	// Re-polling after the run ended returns the same terminal record.
	again, err := svc.Poll(context.Background(), resp.RequestId)
	assert.NoError(t, err)
	assert.Equal(t, first.Status, again.Status)
	assert.Equal(t, first.CompletedSections, again.CompletedSections)
}
