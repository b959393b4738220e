package reporting

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/config"
	"github.com/aivisualpro/devco-erp/internal/features/quickbooks"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Mirror pushes flat project-financial snapshots into a Postgres warehouse
// the BI tooling reads from. The warehouse is a derived copy; Mongo stays
// authoritative and a failed push is retried on the next snapshot run.
type Mirror struct {
	db  *sql.DB
	log *zap.Logger
}

// NewMirror returns nil when no DSN is configured; the reporting endpoints
// then respond that the mirror is disabled.
func NewMirror(cfg *config.Config, log *zap.Logger) (*Mirror, error) {
	if cfg.MirrorPostgresDSN == "" {
		return nil, nil
	}

	db, err := sql.Open("postgres", cfg.MirrorPostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open mirror: %w", err)
	}
	db.SetMaxOpenConns(4)

	m := &Mirror{db: db, log: log}
	if err := m.ensureSchema(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mirror) ensureSchema() error {
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS project_financials (
			project_id        TEXT PRIMARY KEY,
			project_name      TEXT NOT NULL,
			customer          TEXT NOT NULL DEFAULT '',
			status            TEXT NOT NULL DEFAULT '',
			original_contract DOUBLE PRECISION NOT NULL DEFAULT 0,
			change_orders     DOUBLE PRECISION NOT NULL DEFAULT 0,
			transaction_count INTEGER NOT NULL DEFAULT 0,
			invoiced_total    DOUBLE PRECISION NOT NULL DEFAULT 0,
			paid_total        DOUBLE PRECISION NOT NULL DEFAULT 0,
			snapshotted_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure mirror schema: %w", err)
	}
	return nil
}

func (m *Mirror) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Snapshot upserts one row per project. Effective contract figures include
// the manual overrides.
func (m *Mirror) Snapshot(ctx context.Context, records []quickbooks.ProjectRecord) (int, error) {
	if m == nil {
		return 0, apperr.Validation("reporting mirror is not configured")
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO project_financials
			(project_id, project_name, customer, status, original_contract,
			 change_orders, transaction_count, invoiced_total, paid_total, snapshotted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (project_id) DO UPDATE SET
			project_name      = EXCLUDED.project_name,
			customer          = EXCLUDED.customer,
			status            = EXCLUDED.status,
			original_contract = EXCLUDED.original_contract,
			change_orders     = EXCLUDED.change_orders,
			transaction_count = EXCLUDED.transaction_count,
			invoiced_total    = EXCLUDED.invoiced_total,
			paid_total        = EXCLUDED.paid_total,
			snapshotted_at    = now()`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	written := 0
	for _, rec := range records {
		invoiced, paid := totals(rec.Transactions)
		_, err := stmt.ExecContext(ctx,
			rec.ProjectID, rec.ProjectName, rec.Customer, rec.Status,
			rec.OriginalContract(), rec.ChangeOrders(),
			len(rec.Transactions), invoiced, paid)
		if err != nil {
			m.log.Warn("mirror row upsert failed",
				zap.String("project_id", rec.ProjectID), zap.Error(err))
			continue
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return written, nil
}

func totals(transactions []quickbooks.Transaction) (invoiced, paid float64) {
	for _, t := range transactions {
		switch t.Type {
		case "Invoice":
			invoiced += t.Amount
		case "Payment":
			paid += -t.Amount
		}
	}
	return invoiced, paid
}
