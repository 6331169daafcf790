// Package report builds the admin export workbooks.
package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/entity"
)

// TimesheetExporter implements port.TimesheetExporter with excelize
type TimesheetExporter struct {
	logger *zap.Logger
}

// NewTimesheetExporter creates a new timesheet exporter
func NewTimesheetExporter(logger *zap.Logger) port.TimesheetExporter {
	return &TimesheetExporter{logger: logger}
}

var timesheetHeaders = []string{"Date", "Staff", "Project", "Hours", "Status", "Notes"}

// Export renders the entries to a single-sheet workbook with a totals row
func (e *TimesheetExporter) Export(ctx context.Context, entries []*entity.TimesheetEntry, users map[string]*entity.User, projects map[string]*entity.Project) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Timesheets"
	f.SetSheetName("Sheet1", sheet)

	for col, header := range timesheetHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		e.setCell(f, sheet, cell, header)
	}

	total := decimal.Zero
	for i, entry := range entries {
		row := i + 2
		e.setCell(f, sheet, fmt.Sprintf("A%d", row), entry.EntryDate.Format("2006-01-02"))
		e.setCell(f, sheet, fmt.Sprintf("B%d", row), e.userName(users, entry.StaffID))
		e.setCell(f, sheet, fmt.Sprintf("C%d", row), e.projectName(projects, entry.ProjectID))
		e.setCell(f, sheet, fmt.Sprintf("D%d", row), entry.Hours.String())
		e.setCell(f, sheet, fmt.Sprintf("E%d", row), string(entry.Status))
		e.setCell(f, sheet, fmt.Sprintf("F%d", row), entry.Notes)

		if entry.Status == entity.TimesheetApproved {
			total = total.Add(entry.Hours)
		}
	}

	totalRow := len(entries) + 3
	e.setCell(f, sheet, fmt.Sprintf("C%d", totalRow), "Approved hours")
	e.setCell(f, sheet, fmt.Sprintf("D%d", totalRow), total.String())

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		e.logger.Error("Failed to write workbook", zap.Error(err))
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Timesheet export generated", zap.Int("entries", len(entries)))
	return buf.Bytes(), nil
}

func (e *TimesheetExporter) setCell(f *excelize.File, sheet, cell string, value interface{}) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

func (e *TimesheetExporter) userName(users map[string]*entity.User, id string) string {
	if u, ok := users[id]; ok && u != nil {
		return u.Name
	}
	return id
}

func (e *TimesheetExporter) projectName(projects map[string]*entity.Project, id string) string {
	if p, ok := projects[id]; ok && p != nil {
		return p.Name
	}
	return id
}

// Verify interface compliance
var _ port.TimesheetExporter = (*TimesheetExporter)(nil)
