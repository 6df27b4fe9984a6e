package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KLH-F-2025/campus-safety-service/internal/models"
	"github.com/xuri/excelize/v2"
)

// ExportService renders admin downloads of the resolved-alert archive and
// the student registry as .xlsx workbooks.
type ExportService interface {
	ExportAlertArchive(ctx context.Context, alerts []models.SOSAlert) ([]byte, error)
	ExportStudentRoster(ctx context.Context, students []models.StudentProfile) ([]byte, error)
}

type exportService struct {
	audit  AuditRecorder
	logger *slog.Logger
}

func NewExportService(audit AuditRecorder, logger *slog.Logger) ExportService {
	return &exportService{
		audit:  audit,
		logger: logger,
	}
}

const exportSheet = "Sheet1"

var archiveHeader = []string{
	"Alert ID", "Student", "Roll Number", "Type", "Latitude", "Longitude",
	"Raised At", "Status", "Resolved At", "Resolution Report", "Witness Report",
}

// ExportAlertArchive writes one row per resolved alert. Unresolved alerts in
// the input are skipped so a full mirror snapshot can be passed straight in.
func (s *exportService) ExportAlertArchive(ctx context.Context, alerts []models.SOSAlert) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeRow(f, 1, archiveHeader); err != nil {
		return nil, err
	}

	row := 2
	for _, alert := range alerts {
		if alert.Status != models.AlertResolved {
			continue
		}
		values := []any{
			alert.ID,
			alert.Student.Name,
			alert.Student.RollNumber,
			string(alert.Type),
			alert.Location.Lat,
			alert.Location.Lng,
			formatMillis(alert.Timestamp),
			string(alert.Status),
			formatMillis(alert.ResolvedAt),
			alert.ResolutionReport,
			alert.IsWitnessReport,
		}
		if err := writeRow(f, row, values); err != nil {
			return nil, err
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write alert archive workbook: %w", err)
	}

	s.logger.Info("exported alert archive", "rows", row-2)
	s.audit.Record(ctx, models.AuditDataExported, "", "alerts", map[string]any{
		"rows": row - 2,
	})
	return buf.Bytes(), nil
}

var rosterHeader = []string{"Name", "Roll Number", "Branch", "Year", "Phone"}

func (s *exportService) ExportStudentRoster(ctx context.Context, students []models.StudentProfile) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeRow(f, 1, rosterHeader); err != nil {
		return nil, err
	}
	for i, student := range students {
		values := []any{
			student.Name,
			student.RollNumber,
			student.Branch,
			student.Year,
			student.Phone,
		}
		if err := writeRow(f, i+2, values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write roster workbook: %w", err)
	}

	s.logger.Info("exported student roster", "rows", len(students))
	s.audit.Record(ctx, models.AuditDataExported, "", "users", map[string]any{
		"rows": len(students),
	})
	return buf.Bytes(), nil
}

func writeRow[T any](f *excelize.File, row int, values []T) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(exportSheet, cell, value); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}

func formatMillis(millis int64) string {
	if millis == 0 {
		return ""
	}
	return time.UnixMilli(millis).UTC().Format(time.RFC3339)
}
