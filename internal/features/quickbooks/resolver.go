package quickbooks

import (
	"context"

	"go.uber.org/zap"
)

// ProjectSet is a deduplicated set of internal project ids.
type ProjectSet map[string]struct{}

func (s ProjectSet) add(id string) {
	if id != "" {
		s[id] = struct{}{}
	}
}

func (s ProjectSet) merge(other ProjectSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// IDs returns the set as a slice, order unspecified.
func (s ProjectSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}

// EntityResolver maps a changed QuickBooks entity to the internal project(s)
// it affects. Projects are QuickBooks sub-customers, so resolution always
// bottoms out in a customer reference; entities several hops away (a payment
// against an invoice against a project) are walked hop by hop.
//
// An entity that cannot be mapped resolves to the empty set. Webhooks fire
// for plenty of entities unrelated to any project and must not fail the
// pipeline.
type EntityResolver struct {
	client Client
	log    *zap.Logger
}

func NewEntityResolver(client Client, log *zap.Logger) *EntityResolver {
	return &EntityResolver{client: client, log: log}
}

// ResolveProjectIDs handles every entity type the webhook can emit. Unknown
// types resolve to the empty set.
func (r *EntityResolver) ResolveProjectIDs(ctx context.Context, entityType, entityID string) (ProjectSet, error) {
	set := ProjectSet{}

	switch entityType {
	case "Customer":
		id, err := r.projectFromCustomer(ctx, entityID)
		if err != nil {
			return set, err
		}
		set.add(id)

	case "Invoice":
		inv, err := r.client.GetInvoice(ctx, entityID)
		if err != nil {
			return set, err
		}
		if inv != nil && inv.CustomerRef != nil {
			id, err := r.projectFromCustomer(ctx, inv.CustomerRef.Value)
			if err != nil {
				return set, err
			}
			set.add(id)
		}

	case "Estimate":
		est, err := r.client.GetEstimate(ctx, entityID)
		if err != nil {
			return set, err
		}
		if est != nil && est.CustomerRef != nil {
			id, err := r.projectFromCustomer(ctx, est.CustomerRef.Value)
			if err != nil {
				return set, err
			}
			set.add(id)
		}

	case "Payment":
		sub, err := r.resolvePayment(ctx, entityID)
		if err != nil {
			return set, err
		}
		set.merge(sub)

	case "Bill":
		bill, err := r.client.GetBill(ctx, entityID)
		if err != nil {
			return set, err
		}
		if bill != nil {
			sub, err := r.projectsFromLines(ctx, bill.Line)
			if err != nil {
				return set, err
			}
			set.merge(sub)
		}

	case "Purchase":
		purchase, err := r.client.GetPurchase(ctx, entityID)
		if err != nil {
			return set, err
		}
		if purchase != nil {
			sub, err := r.projectsFromLines(ctx, purchase.Line)
			if err != nil {
				return set, err
			}
			set.merge(sub)
		}

	default:
		r.log.Debug("unhandled entity type in webhook",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID))
	}

	return set, nil
}

// projectFromCustomer returns the customer id when the customer is a
// sub-customer (a project), empty otherwise. Top-level customers are
// accounts, not projects.
func (r *EntityResolver) projectFromCustomer(ctx context.Context, customerID string) (string, error) {
	if customerID == "" {
		return "", nil
	}
	cust, err := r.client.GetCustomer(ctx, customerID)
	if err != nil {
		return "", err
	}
	if cust == nil || !cust.Job {
		return "", nil
	}
	return cust.ID, nil
}

// resolvePayment tries the payment's own customer reference first, then
// walks the linked invoices. A payment can cover invoices across several
// projects, hence the union.
func (r *EntityResolver) resolvePayment(ctx context.Context, paymentID string) (ProjectSet, error) {
	set := ProjectSet{}

	payment, err := r.client.GetPayment(ctx, paymentID)
	if err != nil {
		return set, err
	}
	if payment == nil {
		return set, nil
	}

	if payment.CustomerRef != nil {
		id, err := r.projectFromCustomer(ctx, payment.CustomerRef.Value)
		if err != nil {
			return set, err
		}
		set.add(id)
	}

	for _, line := range payment.Line {
		for _, linked := range line.LinkedTxn {
			if linked.TxnType != "Invoice" {
				continue
			}
			inv, err := r.client.GetInvoice(ctx, linked.TxnID)
			if err != nil {
				return set, err
			}
			if inv == nil || inv.CustomerRef == nil {
				continue
			}
			id, err := r.projectFromCustomer(ctx, inv.CustomerRef.Value)
			if err != nil {
				return set, err
			}
			set.add(id)
		}
	}

	return set, nil
}

// projectsFromLines unions the customer references on expense lines. Bills
// and purchases tag project attribution per line, not per document.
func (r *EntityResolver) projectsFromLines(ctx context.Context, lines []PurchaseLine) (ProjectSet, error) {
	set := ProjectSet{}
	for _, line := range lines {
		var ref *Ref
		if line.AccountBasedExpenseLineDetail != nil {
			ref = line.AccountBasedExpenseLineDetail.CustomerRef
		} else if line.ItemBasedExpenseLineDetail != nil {
			ref = line.ItemBasedExpenseLineDetail.CustomerRef
		}
		if ref == nil {
			continue
		}
		id, err := r.projectFromCustomer(ctx, ref.Value)
		if err != nil {
			return set, err
		}
		set.add(id)
	}
	return set, nil
}
