package schedule

import (
	"context"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/features/client"
	"github.com/aivisualpro/devco-erp/internal/features/estimate"

	"go.mongodb.org/mongo-driver/bson"
)

// ClientStrategy attempts to resolve a schedule's client. Returns ("", nil)
// when the strategy does not apply or finds nothing; errors are reserved for
// store failures.
type ClientStrategy struct {
	Name    string
	Resolve func(ctx context.Context, s *Schedule) (string, error)
}

// EstimateStrategy is the estimate-side counterpart of ClientStrategy.
type EstimateStrategy struct {
	Name    string
	Resolve func(ctx context.Context, s *Schedule) (string, error)
}

// LinkResolver resolves a schedule's client and estimate through an ordered
// list of fallback strategies: explicit id first, then proposal number, then
// the denormalized client name. The first strategy that produces a hit wins.
type LinkResolver struct {
	clientStrategies   []ClientStrategy
	estimateStrategies []EstimateStrategy
}

func NewLinkResolver(clients client.ClientRepository, estimates estimate.EstimateRepository) *LinkResolver {
	return &LinkResolver{
		clientStrategies: []ClientStrategy{
			{
				Name: "explicit_id",
				Resolve: func(ctx context.Context, s *Schedule) (string, error) {
					if s.ClientID == "" {
						return "", nil
					}
					c, err := clients.FindByID(ctx, s.ClientID)
					if err != nil {
						return "", softenNotFound(err)
					}
					return c.ID.Hex(), nil
				},
			},
			{
				Name: "via_estimate",
				Resolve: func(ctx context.Context, s *Schedule) (string, error) {
					if s.ProposalNumber == "" {
						return "", nil
					}
					e, err := estimates.FindByProposalNumber(ctx, s.ProposalNumber)
					if err != nil {
						return "", softenNotFound(err)
					}
					return e.ClientID, nil
				},
			},
			{
				Name: "company_name",
				Resolve: func(ctx context.Context, s *Schedule) (string, error) {
					if s.ClientName == "" {
						return "", nil
					}
					matches, err := clients.List(ctx, bson.M{"company_name": s.ClientName})
					if err != nil {
						return "", err
					}
					// Ambiguous names do not resolve. Better no link than
					// a wrong one.
					if len(matches) != 1 {
						return "", nil
					}
					return matches[0].ID.Hex(), nil
				},
			},
		},
		estimateStrategies: []EstimateStrategy{
			{
				Name: "explicit_id",
				Resolve: func(ctx context.Context, s *Schedule) (string, error) {
					if s.EstimateID == "" {
						return "", nil
					}
					e, err := estimates.FindByID(ctx, s.EstimateID)
					if err != nil {
						return "", softenNotFound(err)
					}
					return e.ID.Hex(), nil
				},
			},
			{
				Name: "proposal_number",
				Resolve: func(ctx context.Context, s *Schedule) (string, error) {
					if s.ProposalNumber == "" {
						return "", nil
					}
					e, err := estimates.FindByProposalNumber(ctx, s.ProposalNumber)
					if err != nil {
						return "", softenNotFound(err)
					}
					return e.ID.Hex(), nil
				},
			},
			{
				Name: "client_name_single",
				Resolve: func(ctx context.Context, s *Schedule) (string, error) {
					if s.ClientName == "" {
						return "", nil
					}
					matches, err := estimates.FindByClientName(ctx, s.ClientName)
					if err != nil {
						return "", err
					}
					if len(matches) != 1 {
						return "", nil
					}
					return matches[0].ID.Hex(), nil
				},
			},
		},
	}
}

// Resolve walks the strategy lists in order and returns the first hit on
// each side. A schedule with no resolvable linkage yields empty links, not
// an error.
func (r *LinkResolver) Resolve(ctx context.Context, s *Schedule) (ScheduleLinks, error) {
	links := ScheduleLinks{}

	for _, strat := range r.clientStrategies {
		id, err := strat.Resolve(ctx, s)
		if err != nil {
			return links, err
		}
		if id != "" {
			links.ClientID = id
			links.ClientResolvedBy = strat.Name
			break
		}
	}

	for _, strat := range r.estimateStrategies {
		id, err := strat.Resolve(ctx, s)
		if err != nil {
			return links, err
		}
		if id != "" {
			links.EstimateID = id
			links.EstimateResolvedBy = strat.Name
			break
		}
	}

	return links, nil
}

// softenNotFound turns a missing referenced record into a non-hit so the
// next strategy gets a chance. Dangling ids happen in imported data.
func softenNotFound(err error) error {
	if apperr.KindOf(err) == apperr.KindNotFound || apperr.KindOf(err) == apperr.KindValidation {
		return nil
	}
	return err
}
