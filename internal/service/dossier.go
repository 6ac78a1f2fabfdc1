package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"daoapi/internal/model"
	"daoapi/internal/repository"
)

// CreateDossierInput carries the fields of a new dossier and its team nomination.
type CreateDossierInput struct {
	Subject     string     `json:"subject"`
	Description string     `json:"description"`
	Reference   string     `json:"reference"`
	Authority   string     `json:"authority"`
	DepositDate *time.Time `json:"deposit_date,omitempty"`
	LeadUserID  int64      `json:"lead_user_id"`
	MemberIDs   []int64    `json:"member_ids"`
}

// DossierView is a dossier with its derived status.
type DossierView struct {
	model.Dossier
	Status StatusInfo `json:"status"`
}

// DossierDetail adds the team and tasks to a dossier view.
type DossierDetail struct {
	DossierView
	Team  []model.TeamMember `json:"team"`
	Tasks []model.Task       `json:"tasks"`
}

// DossierListResult is the service-level DTO for paginated dossiers.
type DossierListResult struct {
	Items []DossierView `json:"data"`
	Total int           `json:"total"`
}

// Dashboard summarises the dossiers visible to a viewer.
type Dashboard struct {
	Capability    model.Capability `json:"capability"`
	Total         int              `json:"total"`
	Completed     int              `json:"completed"`
	OnTrack       int              `json:"on_track"`
	AtRisk        int              `json:"at_risk"`
	AssignedTasks []model.Task     `json:"assigned_tasks,omitempty"`
}

// DossierService defines the dossier use cases.
type DossierService interface {
	// Create validates the team, allocates a number and stores the dossier with its team.
	// Nothing is allocated or written when validation fails.
	Create(ctx context.Context, viewer model.Viewer, in CreateDossierInput) (*DossierView, error)

	Get(ctx context.Context, viewer model.Viewer, id int64) (*DossierDetail, error)

	// List returns the dossiers the viewer may see, newest first.
	List(ctx context.Context, viewer model.Viewer, limit, offset int) (*DossierListResult, error)

	// SetCompleted marks a dossier completed or reopens it.
	SetCompleted(ctx context.Context, viewer model.Viewer, id int64, completed bool) (*DossierView, error)

	Dashboard(ctx context.Context, viewer model.Viewer) (*Dashboard, error)
}

// DossierOptions tunes dossier rules.
type DossierOptions struct {
	// StrictLeadRole restricts team leads to project leads.
	StrictLeadRole bool
}

type dossierService struct {
	access    dossierAccess
	dossiers  repository.DossierRepository
	users     repository.UserRepository
	tasks     repository.TaskRepository
	allocator NumberAllocator
	clock     Clock
	opts      DossierOptions
}

// NewDossierService constructs a new DossierService.
func NewDossierService(
	dossiers repository.DossierRepository,
	users repository.UserRepository,
	tasks repository.TaskRepository,
	allocator NumberAllocator,
	clock Clock,
	opts DossierOptions,
) DossierService {
	return &dossierService{
		access:    dossierAccess{dossiers: dossiers},
		dossiers:  dossiers,
		users:     users,
		tasks:     tasks,
		allocator: allocator,
		clock:     clock,
		opts:      opts,
	}
}

func (s *dossierService) Create(ctx context.Context, viewer model.Viewer, in CreateDossierInput) (*DossierView, error) {
	ctx, span := tracer.Start(ctx, "dossier.create")
	defer span.End()

	if !CanCreateDossier(viewer.Capability) {
		return nil, ErrForbidden
	}

	in.Subject = strings.TrimSpace(in.Subject)
	if in.Subject == "" {
		return nil, invalid("subject", "must not be empty")
	}
	if in.LeadUserID <= 0 {
		return nil, invalid("lead_user_id", "is required")
	}
	memberIDs, err := dedupeMembers(in.LeadUserID, in.MemberIDs)
	if err != nil {
		return nil, err
	}
	if err := s.validateTeam(ctx, in.LeadUserID, memberIDs); err != nil {
		return nil, err
	}

	number, err := s.allocator.Allocate(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("dao.number", number))

	d := &model.Dossier{
		Number:      number,
		DepositDate: in.DepositDate,
		Subject:     in.Subject,
		Description: strings.TrimSpace(in.Description),
		Reference:   strings.TrimSpace(in.Reference),
		Authority:   strings.TrimSpace(in.Authority),
		LeadUserID:  in.LeadUserID,
		CreatedAt:   s.clock.Now().UTC(),
	}
	stored, err := s.dossiers.Create(ctx, d, memberIDs)
	if err != nil {
		return nil, unavailable("save dossier "+number, err)
	}
	return s.view(stored), nil
}

func dedupeMembers(leadID int64, ids []int64) ([]int64, error) {
	seen := map[int64]bool{leadID: true}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, invalid("member_ids", "invalid user id %d", id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

// validateTeam checks that the lead may lead and every member is a team member.
func (s *dossierService) validateTeam(ctx context.Context, leadID int64, memberIDs []int64) error {
	ids := append([]int64{leadID}, memberIDs...)
	found, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return unavailable("load team users", err)
	}
	byID := make(map[int64]model.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}

	lead, ok := byID[leadID]
	if !ok {
		return invalid("lead_user_id", "user %d not found", leadID)
	}
	if c := ClassifyUser(lead); !LeadEligible(c, s.opts.StrictLeadRole) {
		return invalid("lead_user_id", "user %d is %s and cannot lead a team", leadID, c)
	}
	for _, id := range memberIDs {
		u, ok := byID[id]
		if !ok {
			return invalid("member_ids", "user %d not found", id)
		}
		if c := ClassifyUser(u); !MemberEligible(c) {
			return invalid("member_ids", "user %d is %s, not a team member", id, c)
		}
	}
	return nil
}

func (s *dossierService) Get(ctx context.Context, viewer model.Viewer, id int64) (*DossierDetail, error) {
	d, err := s.access.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.access.requireView(ctx, viewer, d); err != nil {
		return nil, err
	}

	team, err := s.dossiers.TeamMembers(ctx, d.ID)
	if err != nil {
		return nil, unavailable("list team members", err)
	}
	tasks, err := s.tasks.ListByDossier(ctx, d.ID)
	if err != nil {
		return nil, unavailable("list tasks", err)
	}
	return &DossierDetail{DossierView: *s.view(d), Team: team, Tasks: tasks}, nil
}

func (s *dossierService) List(ctx context.Context, viewer model.Viewer, limit, offset int) (*DossierListResult, error) {
	res, err := s.dossiers.List(ctx, filterFor(viewer), normalizePage(limit, offset))
	if err != nil {
		return nil, unavailable("list dossiers", err)
	}
	out := &DossierListResult{Items: make([]DossierView, 0, len(res.Items)), Total: res.Total}
	for i := range res.Items {
		out.Items = append(out.Items, *s.view(&res.Items[i]))
	}
	return out, nil
}

func filterFor(v model.Viewer) repository.DossierFilter {
	switch v.Capability {
	case model.CapabilityProjectLead:
		return repository.DossierFilter{LeadUserID: v.UserID}
	case model.CapabilityTeamMember:
		return repository.DossierFilter{MemberUserID: v.UserID}
	default:
		return repository.DossierFilter{}
	}
}

func (s *dossierService) SetCompleted(ctx context.Context, viewer model.Viewer, id int64, completed bool) (*DossierView, error) {
	ctx, span := tracer.Start(ctx, "dossier.set_completed",
		trace.WithAttributes(attribute.Int64("dao.dossier_id", id), attribute.Bool("dao.completed", completed)))
	defer span.End()

	d, err := s.access.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageDossier(viewer, d) {
		return nil, ErrForbidden
	}
	if err := s.dossiers.SetCompleted(ctx, id, completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("dossier %d: %w", id, ErrNotFound)
		}
		return nil, unavailable("update dossier", err)
	}
	d.Completed = completed
	return s.view(d), nil
}

const dashboardPageSize = 100

func (s *dossierService) Dashboard(ctx context.Context, viewer model.Viewer) (*Dashboard, error) {
	out := &Dashboard{Capability: viewer.Capability}
	today := s.clock.Now()
	filter := filterFor(viewer)

	for offset := 0; ; offset += dashboardPageSize {
		res, err := s.dossiers.List(ctx, filter, repository.PageQuery{Limit: dashboardPageSize, Offset: offset})
		if err != nil {
			return nil, unavailable("list dossiers", err)
		}
		for _, d := range res.Items {
			switch DeriveStatus(d.DepositDate, d.Completed, today) {
			case StatusCompleted:
				out.Completed++
			case StatusAtRisk:
				out.AtRisk++
			default:
				out.OnTrack++
			}
		}
		out.Total = res.Total
		if len(res.Items) < dashboardPageSize || offset+len(res.Items) >= res.Total {
			break
		}
	}

	if viewer.Capability == model.CapabilityTeamMember {
		tasks, err := s.tasks.ListByAssignee(ctx, viewer.UserID)
		if err != nil {
			return nil, unavailable("list assigned tasks", err)
		}
		out.AssignedTasks = tasks
	}
	return out, nil
}

func (s *dossierService) view(d *model.Dossier) *DossierView {
	return &DossierView{Dossier: *d, Status: DescribeStatus(d.DepositDate, d.Completed, s.clock.Now())}
}
