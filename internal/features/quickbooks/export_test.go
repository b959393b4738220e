package quickbooks

import (
	"context"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExportCollidingProjectNamesGetDistinctSheets(t *testing.T) {
	// Both names truncate to the same 31-char prefix.
	long := "Riverside Commons Phase Two Building"
	repo := newFakeProjectRepo()
	repo.records["201"] = &ProjectRecord{
		ProjectID:   "201",
		ProjectName: long + " A",
		Transactions: []Transaction{
			{TransactionID: "Invoice:a1", Type: "Invoice", Amount: 100},
		},
	}
	repo.records["202"] = &ProjectRecord{
		ProjectID:   "202",
		ProjectName: long + " B",
		Transactions: []Transaction{
			{TransactionID: "Invoice:b1", Type: "Invoice", Amount: 200},
		},
	}

	buf, err := NewExporter(repo).ExportFinancials(context.Background())
	if err != nil {
		t.Fatalf("ExportFinancials: %v", err)
	}

	wb, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) != 3 {
		t.Fatalf("sheets = %v, want Summary plus one per project", sheets)
	}
	seen := map[string]bool{}
	for _, s := range sheets {
		if len(s) > 31 {
			t.Errorf("sheet name %q exceeds 31 chars", s)
		}
		if seen[s] {
			t.Errorf("duplicate sheet name %q", s)
		}
		seen[s] = true
	}
}

func TestTransactionSheetName(t *testing.T) {
	tests := []struct {
		name string
		rec  ProjectRecord
		want string
	}{
		{"short name keeps id suffix", ProjectRecord{ProjectID: "7", ProjectName: "Depot"}, "Depot (7)"},
		{"missing name falls back to id", ProjectRecord{ProjectID: "42"}, "42"},
		{"long name truncates around suffix", ProjectRecord{
			ProjectID:   "9",
			ProjectName: "An Extremely Long Project Name That Overflows",
		}, "An Extremely Long Project N (9)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transactionSheetName(&tt.rec)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if len(got) > 31 {
				t.Errorf("%q exceeds 31 chars", got)
			}
		})
	}
}
