package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/questionportal/faq-service/internal/models"
	"github.com/questionportal/faq-service/internal/repositories"
)

const exportSheetName = "Questions"

var exportHeaders = []interface{}{
	"ID", "Question", "AI Suggested Answer", "Final Answer", "Status", "Author", "Author Role", "Created At",
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

func (s *exportService) ExportQuestions(ctx context.Context, status *models.QuestionStatus) ([]byte, error) {
	questions, _, err := s.repo.Question().List(ctx, repositories.QuestionFilters{Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to list questions for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheetName, "A1", &exportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, q := range questions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := exportRow(q)
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(exportSheetName, "B", "D", 60); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.InfoContext(ctx, "Questions exported", "rows", len(questions))
	return buf.Bytes(), nil
}

func exportRow(q *models.Question) []interface{} {
	author, role := "", ""
	if q.Creator != nil {
		author, role = q.Creator.Name, string(q.Creator.Role)
	}
	return []interface{}{
		q.ID,
		q.QuestionText,
		derefString(q.AISuggestedAnswer),
		derefString(q.FinalAnswer),
		string(q.Status),
		author,
		role,
		q.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
