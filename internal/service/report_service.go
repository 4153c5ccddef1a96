package service

import (
	"context"

	"ai-blueprint-be/internal/dto"
	"ai-blueprint-be/internal/repository/contract"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IReportService interface {
	Show(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error)
}

type reportService struct {
	reportRepo contract.ReportRepository
}

func NewReportService(reportRepo contract.ReportRepository) IReportService {
	return &reportService{reportRepo: reportRepo}
}

func (s *reportService) Show(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error) {
	report, err := s.reportRepo.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Report not found")
	}

	return &dto.ReportResponse{
		Id:        report.Id,
		FullName:  report.FullName,
		Document:  report.Document,
		CreatedAt: report.CreatedAt,
	}, nil
}
