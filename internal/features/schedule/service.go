package schedule

import (
	"context"
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/features/permission"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type ScheduleService interface {
	CreateSchedule(ctx context.Context, d permission.Decision, s *Schedule) error
	GetSchedule(ctx context.Context, d permission.Decision, id string) (map[string]interface{}, error)
	GetScheduleLinks(ctx context.Context, d permission.Decision, id string) (ScheduleLinks, error)
	ListSchedules(ctx context.Context, d permission.Decision, from, to *time.Time) ([]map[string]interface{}, error)
	UpdateSchedule(ctx context.Context, d permission.Decision, id string, updates map[string]interface{}) error
	DeleteSchedule(ctx context.Context, d permission.Decision, id string) error
}

type ScheduleServiceImpl struct {
	Repo     ScheduleRepository
	Resolver *LinkResolver
	Log      *zap.Logger
}

func NewScheduleService(repo ScheduleRepository, resolver *LinkResolver, log *zap.Logger) ScheduleService {
	return &ScheduleServiceImpl{Repo: repo, Resolver: resolver, Log: log}
}

func (s *ScheduleServiceImpl) CreateSchedule(ctx context.Context, d permission.Decision, sched *Schedule) error {
	if sched.Title == "" {
		return apperr.Validation("title is required")
	}
	if sched.StartDate.IsZero() || sched.EndDate.IsZero() {
		return apperr.Validation("start_date and end_date are required")
	}
	if sched.EndDate.Before(sched.StartDate) {
		return apperr.Validation("end_date must not precede start_date")
	}

	sched.CreatedBy = d.UserID
	if sched.Department == "" {
		sched.Department = d.Department
	}
	if sched.Status == "" {
		sched.Status = "planned"
	}
	now := time.Now()
	sched.CreatedAt = now
	sched.UpdatedAt = now

	// Best effort: pin down the linkage at creation so later lookups are a
	// direct id hit.
	links, err := s.Resolver.Resolve(ctx, sched)
	if err != nil {
		s.Log.Warn("schedule link resolution failed", zap.Error(err))
	} else {
		if sched.ClientID == "" && links.ClientID != "" {
			sched.ClientID = links.ClientID
		}
		if sched.EstimateID == "" && links.EstimateID != "" {
			sched.EstimateID = links.EstimateID
		}
	}

	return s.Repo.Create(ctx, sched)
}

func (s *ScheduleServiceImpl) GetSchedule(ctx context.Context, d permission.Decision, id string) (map[string]interface{}, error) {
	sched, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inScope(d, sched) {
		return nil, apperr.NotFound("schedule not found")
	}
	return d.StripRestrictedFields(sched)
}

func (s *ScheduleServiceImpl) GetScheduleLinks(ctx context.Context, d permission.Decision, id string) (ScheduleLinks, error) {
	sched, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return ScheduleLinks{}, err
	}
	if !inScope(d, sched) {
		return ScheduleLinks{}, apperr.NotFound("schedule not found")
	}
	return s.Resolver.Resolve(ctx, sched)
}

func (s *ScheduleServiceImpl) ListSchedules(ctx context.Context, d permission.Decision, from, to *time.Time) ([]map[string]interface{}, error) {
	var (
		schedules []Schedule
		err       error
	)
	if from != nil && to != nil {
		schedules, err = s.Repo.ListBetween(ctx, d.ScopeFilter(), *from, *to)
	} else {
		schedules, err = s.Repo.List(ctx, d.ScopeFilter())
	}
	if err != nil {
		return nil, err
	}
	return d.StripRestrictedFieldsAll(schedules)
}

func (s *ScheduleServiceImpl) UpdateSchedule(ctx context.Context, d permission.Decision, id string, updates map[string]interface{}) error {
	if err := d.RejectRestrictedWrites(permission.ModuleSchedules, permission.ActionUpdate, updates); err != nil {
		return err
	}

	sched, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !inScope(d, sched) {
		return apperr.NotFound("schedule not found")
	}

	allowed := map[string]bool{
		"title": true, "client_id": true, "client_name": true,
		"estimate_id": true, "proposal_number": true,
		"crew_lead": true, "crew_members": true, "location": true,
		"start_date": true, "end_date": true, "status": true,
		"department": true, "notes": true,
	}
	set := bson.M{}
	for k, v := range updates {
		if !allowed[k] {
			return apperr.Validation("field " + k + " cannot be updated")
		}
		set[k] = v
	}
	if len(set) == 0 {
		return apperr.Validation("no updatable fields provided")
	}

	return s.Repo.Update(ctx, id, set)
}

func (s *ScheduleServiceImpl) DeleteSchedule(ctx context.Context, d permission.Decision, id string) error {
	sched, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !inScope(d, sched) {
		return apperr.NotFound("schedule not found")
	}
	return s.Repo.Delete(ctx, id)
}

func inScope(d permission.Decision, s *Schedule) bool {
	switch d.Scope {
	case permission.ScopeSelf:
		return s.CreatedBy == d.UserID
	case permission.ScopeDepartment:
		return s.Department == d.Department
	default:
		return true
	}
}
