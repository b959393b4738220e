package quickbooks

import (
	"context"
	"sort"
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"

	"go.uber.org/zap"
)

// Syncer reconciles a project's stored financials against the authoritative
// QuickBooks state. It always refetches the full current snapshot instead of
// applying deltas, so duplicated or reordered webhook notifications are
// harmless: the last fetch wins.
type Syncer struct {
	client   Client
	projects ProjectRepository
	log      *zap.Logger
}

func NewSyncer(client Client, projects ProjectRepository, log *zap.Logger) *Syncer {
	return &Syncer{client: client, projects: projects, log: log}
}

// SyncProjectToDB is idempotent: run twice with no external change in
// between it stores the same record both times. The manual override fields
// are never part of the write (see ProjectRepository.UpsertSynced).
func (s *Syncer) SyncProjectToDB(ctx context.Context, projectID string) error {
	cust, err := s.client.GetCustomer(ctx, projectID)
	if err != nil {
		return err
	}
	if cust == nil {
		return apperr.NotFound("quickbooks project " + projectID + " not found")
	}

	transactions, err := s.client.ProjectTransactions(ctx, projectID)
	if err != nil {
		return err
	}

	// Deterministic order regardless of provider response order.
	sort.SliceStable(transactions, func(i, j int) bool {
		if !transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].Date.Before(transactions[j].Date)
		}
		return transactions[i].TransactionID < transactions[j].TransactionID
	})

	original, changeOrders := contractTotals(transactions)

	status := "active"
	if !cust.Active {
		status = "closed"
	}

	customer := ""
	if cust.ParentRef != nil {
		customer = cust.ParentRef.Name
		if customer == "" {
			customer = cust.ParentRef.Value
		}
	}

	now := time.Now()
	rec := &ProjectRecord{
		ProjectID:                projectID,
		ProjectName:              cust.DisplayName,
		Customer:                 customer,
		Status:                   status,
		ComputedOriginalContract: original,
		ComputedChangeOrders:     changeOrders,
		Transactions:             transactions,
		LastSyncedAt:             &now,
	}

	if err := s.projects.UpsertSynced(ctx, rec); err != nil {
		return err
	}

	s.log.Info("project synced",
		zap.String("project_id", projectID),
		zap.Int("transactions", len(transactions)))
	return nil
}

// SyncAll runs a full resync over every known project, isolating per-project
// failures the same way webhook processing does.
func (s *Syncer) SyncAll(ctx context.Context) (synced int, failed int) {
	ids, err := s.projects.ListProjectIDs(ctx)
	if err != nil {
		s.log.Error("full resync aborted: listing projects failed", zap.Error(err))
		return 0, 0
	}

	for _, id := range ids {
		if err := s.SyncProjectToDB(ctx, id); err != nil {
			failed++
			s.log.Warn("project sync failed during full resync",
				zap.String("project_id", id), zap.Error(err))
			continue
		}
		synced++
	}
	return synced, failed
}

// contractTotals derives the computed contract figures: the earliest invoice
// is the original contract, every later invoice is a change order.
func contractTotals(transactions []Transaction) (original, changeOrders float64) {
	first := true
	for _, t := range transactions {
		if t.Type != "Invoice" {
			continue
		}
		if first {
			original = t.Amount
			first = false
			continue
		}
		changeOrders += t.Amount
	}
	return original, changeOrders
}
