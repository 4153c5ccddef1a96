package contract

import (
	"context"

	"ai-blueprint-be/internal/entity"

	"github.com/google/uuid"
)

// ReportRepository is the result sink: a write-once store for completed
// blueprint documents. Any durable backend satisfies this contract.
type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Report, error)
}
