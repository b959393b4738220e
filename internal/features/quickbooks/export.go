package quickbooks

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Exporter renders project financials to a spreadsheet: a summary sheet of
// every project plus one transaction sheet per requested project.
type Exporter struct {
	projects ProjectRepository
}

func NewExporter(projects ProjectRepository) *Exporter {
	return &Exporter{projects: projects}
}

// ExportFinancials builds the workbook. The effective contract figures use
// the manual overrides where set.
func (e *Exporter) ExportFinancials(ctx context.Context) (*bytes.Buffer, error) {
	records, err := e.projects.List(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	f.SetSheetName("Sheet1", summary)

	headers := []string{"Project ID", "Project", "Customer", "Status",
		"Original Contract", "Change Orders", "Transactions", "Last Synced"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(summary, cell, h)
	}

	for row, rec := range records {
		values := []interface{}{
			rec.ProjectID,
			rec.ProjectName,
			rec.Customer,
			rec.Status,
			rec.OriginalContract(),
			rec.ChangeOrders(),
			len(rec.Transactions),
			"",
		}
		if rec.LastSyncedAt != nil {
			values[7] = rec.LastSyncedAt.Format("2006-01-02 15:04")
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(summary, cell, v)
		}
	}

	for _, rec := range records {
		if len(rec.Transactions) == 0 {
			continue
		}
		if err := e.addTransactionSheet(f, &rec); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (e *Exporter) addTransactionSheet(f *excelize.File, rec *ProjectRecord) error {
	name := transactionSheetName(rec)
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("sheet %q: %w", name, err)
	}

	headers := []string{"Transaction ID", "Date", "Type", "Split", "From/To", "Amount", "Memo"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(name, cell, h)
	}

	for row, t := range rec.Transactions {
		date := ""
		if !t.Date.IsZero() {
			date = t.Date.Format("2006-01-02")
		}
		values := []interface{}{t.TransactionID, date, t.Type, t.Split, t.FromTo, t.Amount, t.Memo}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(name, cell, v)
		}
	}
	return nil
}

// transactionSheetName keeps names inside the 31-char sheet limit while
// staying unique per project. Long names that truncate identically would
// otherwise land on the same sheet, so the project id rides along.
func transactionSheetName(rec *ProjectRecord) string {
	if rec.ProjectName == "" {
		if len(rec.ProjectID) > 31 {
			return rec.ProjectID[:31]
		}
		return rec.ProjectID
	}

	suffix := " (" + rec.ProjectID + ")"
	room := 31 - len(suffix)
	if room <= 0 {
		if len(rec.ProjectID) > 31 {
			return rec.ProjectID[:31]
		}
		return rec.ProjectID
	}

	name := rec.ProjectName
	if len(name) > room {
		name = name[:room]
	}
	return name + suffix
}
