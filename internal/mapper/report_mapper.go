package mapper

import (
	"encoding/json"

	"ai-blueprint-be/internal/entity"
	"ai-blueprint-be/internal/model"
)

type ReportMapper struct{}

func NewReportMapper() *ReportMapper {
	return &ReportMapper{}
}

func (m *ReportMapper) ToEntity(r *model.Report) *entity.Report {
	if r == nil {
		return nil
	}
	var document map[string]interface{}
	// The column is jsonb holding an object we wrote ourselves; a decode
	// failure here means the row was tampered with outside the app.
	_ = json.Unmarshal(r.Document, &document)
	return &entity.Report{
		Id:        r.Id,
		FullName:  r.FullName,
		Document:  document,
		CreatedAt: r.CreatedAt,
	}
}

func (m *ReportMapper) ToModel(r *entity.Report) (*model.Report, error) {
	if r == nil {
		return nil, nil
	}
	document, err := json.Marshal(r.Document)
	if err != nil {
		return nil, err
	}
	return &model.Report{
		Id:        r.Id,
		FullName:  r.FullName,
		Document:  document,
		CreatedAt: r.CreatedAt,
	}, nil
}
