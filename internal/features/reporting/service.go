package reporting

import (
	"context"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/features/quickbooks"

	"go.uber.org/zap"
)

type ReportingService interface {
	SnapshotToMirror(ctx context.Context) (int, error)
	Summary(ctx context.Context) (*FinancialSummary, error)
}

// FinancialSummary is the rollup the dashboard renders.
type FinancialSummary struct {
	Projects        int     `json:"projects"`
	ActiveProjects  int     `json:"active_projects"`
	ContractTotal   float64 `json:"contract_total"`
	ChangeOrders    float64 `json:"change_orders"`
	InvoicedTotal   float64 `json:"invoiced_total"`
	PaidTotal       float64 `json:"paid_total"`
	OutstandingTotal float64 `json:"outstanding_total"`
}

type ReportingServiceImpl struct {
	Projects quickbooks.ProjectRepository
	Mirror   *Mirror
	Log      *zap.Logger
}

func NewReportingService(projects quickbooks.ProjectRepository, mirror *Mirror, log *zap.Logger) ReportingService {
	return &ReportingServiceImpl{Projects: projects, Mirror: mirror, Log: log}
}

func (s *ReportingServiceImpl) SnapshotToMirror(ctx context.Context) (int, error) {
	if s.Mirror == nil {
		return 0, apperr.Validation("reporting mirror is not configured")
	}

	records, err := s.Projects.List(ctx)
	if err != nil {
		return 0, err
	}

	written, err := s.Mirror.Snapshot(ctx, records)
	if err != nil {
		return 0, err
	}
	s.Log.Info("reporting snapshot complete", zap.Int("rows", written))
	return written, nil
}

func (s *ReportingServiceImpl) Summary(ctx context.Context) (*FinancialSummary, error) {
	records, err := s.Projects.List(ctx)
	if err != nil {
		return nil, err
	}

	sum := &FinancialSummary{Projects: len(records)}
	for _, rec := range records {
		if rec.Status == "active" {
			sum.ActiveProjects++
		}
		sum.ContractTotal += rec.OriginalContract()
		sum.ChangeOrders += rec.ChangeOrders()

		invoiced, paid := totals(rec.Transactions)
		sum.InvoicedTotal += invoiced
		sum.PaidTotal += paid
	}
	sum.OutstandingTotal = sum.InvoicedTotal - sum.PaidTotal
	return sum, nil
}
