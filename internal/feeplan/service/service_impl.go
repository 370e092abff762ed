package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/clubledger/internal/actorscope"
	"github.com/clubworks/clubledger/internal/billing"
	"github.com/clubworks/clubledger/internal/clock"
	currencydomain "github.com/clubworks/clubledger/internal/currency/domain"
	directorydomain "github.com/clubworks/clubledger/internal/directory/domain"
	feeplandomain "github.com/clubworks/clubledger/internal/feeplan/domain"
	"github.com/clubworks/clubledger/internal/notify"
	plandomain "github.com/clubworks/clubledger/internal/plan/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  feeplandomain.Repository

	Plans      plandomain.Repository
	Currencies currencydomain.Directory
	Directory  directorydomain.Repository
	Events     notify.Dispatcher
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  feeplandomain.Repository

	plans      plandomain.Repository
	currencies currencydomain.Directory
	directory  directorydomain.Repository
	events     notify.Dispatcher
}

func NewService(p Params) feeplandomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("feeplan.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,

		plans:      p.Plans,
		currencies: p.Currencies,
		directory:  p.Directory,
		events:     p.Events,
	}
}

// Assign creates or replaces the student's subscription. A student holds
// at most one; a second assign overwrites the first in place.
func (s *Service) Assign(ctx context.Context, req feeplandomain.AssignFeePlanRequest) (feeplandomain.StudentFeePlan, error) {
	studentID, err := s.parseStudentID(req.StudentID)
	if err != nil {
		return feeplandomain.StudentFeePlan{}, err
	}

	student, err := s.directory.FindStudent(ctx, studentID)
	if err != nil {
		return feeplandomain.StudentFeePlan{}, err
	}
	if student == nil {
		return feeplandomain.StudentFeePlan{}, feeplandomain.ErrStudentNotFound
	}

	if err := s.authorize(ctx, student); err != nil {
		return feeplandomain.StudentFeePlan{}, err
	}

	interval, err := billing.ParseInterval(req.Interval)
	if err != nil {
		return feeplandomain.StudentFeePlan{}, err
	}
	var count int32 = 1
	if req.IntervalCount != nil {
		count = *req.IntervalCount
	} else if interval == billing.IntervalCustom {
		return feeplandomain.StudentFeePlan{}, billing.ErrInvalidIntervalCount
	}
	if _, err := billing.IntervalMonths(interval, count); err != nil {
		return feeplandomain.StudentFeePlan{}, err
	}

	var resolvedPlan *plandomain.Plan
	if req.PlanID != nil {
		planID, err := snowflake.ParseString(strings.TrimSpace(*req.PlanID))
		if err != nil || planID == 0 {
			return feeplandomain.StudentFeePlan{}, feeplandomain.ErrInvalidPlan
		}
		resolvedPlan, err = s.plans.FindByID(ctx, s.db, planID)
		if err != nil {
			return feeplandomain.StudentFeePlan{}, err
		}
		if resolvedPlan == nil {
			return feeplandomain.StudentFeePlan{}, feeplandomain.ErrPlanNotFound
		}
		if !resolvedPlan.IsActive {
			return feeplandomain.StudentFeePlan{}, feeplandomain.ErrPlanInactive
		}
		if !s.planCoversStudent(resolvedPlan.OwnerRef(), student) {
			return feeplandomain.StudentFeePlan{}, feeplandomain.ErrPlanScopeMismatch
		}
	}

	if resolvedPlan == nil && req.CustomAmount == nil {
		return feeplandomain.StudentFeePlan{}, feeplandomain.ErrMissingAmount
	}
	if req.CustomAmount != nil && req.CustomAmount.IsNegative() {
		return feeplandomain.StudentFeePlan{}, feeplandomain.ErrInvalidCustomAmount
	}

	// The stored currency is only the explicit override; a plan-backed
	// subscription without one keeps following the plan's currency.
	var currencyCode *string
	if req.CurrencyCode != nil && strings.TrimSpace(*req.CurrencyCode) != "" {
		currency, err := s.currencies.LookupActive(ctx, *req.CurrencyCode)
		if err != nil {
			return feeplandomain.StudentFeePlan{}, feeplandomain.ErrInvalidCurrency
		}
		currencyCode = &currency.Code
	} else if resolvedPlan == nil {
		return feeplandomain.StudentFeePlan{}, feeplandomain.ErrMissingCurrency
	}

	discount, err := billing.NormalizeDiscount(req.DiscountType, req.DiscountValue)
	if err != nil {
		return feeplandomain.StudentFeePlan{}, err
	}

	var effectiveFrom *billing.Month
	if req.EffectiveFrom != nil && strings.TrimSpace(*req.EffectiveFrom) != "" {
		month, err := billing.ParseMonth(*req.EffectiveFrom)
		if err != nil {
			return feeplandomain.StudentFeePlan{}, feeplandomain.ErrInvalidEffectiveFrom
		}
		effectiveFrom = &month
	}

	existing, err := s.repo.FindByStudentID(ctx, s.db, studentID)
	if err != nil {
		return feeplandomain.StudentFeePlan{}, err
	}

	now := s.clock.Now()
	sub := feeplandomain.StudentFeePlan{
		ID:            s.genID.Generate(),
		StudentID:     studentID,
		CustomAmount:  req.CustomAmount,
		CurrencyCode:  currencyCode,
		Interval:      interval,
		DiscountValue: discount.Value,
		EffectiveFrom: effectiveFrom,
		IsActive:      true,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if resolvedPlan != nil {
		sub.PlanID = &resolvedPlan.ID
	}
	if req.IntervalCount != nil {
		sub.IntervalCount = req.IntervalCount
	}
	if !discount.IsZero() {
		sub.DiscountType = &discount.Type
	}

	if err := s.repo.Upsert(ctx, s.db, &sub); err != nil {
		return feeplandomain.StudentFeePlan{}, err
	}

	// Re-read so an overwrite returns the surviving row identity.
	stored, err := s.repo.FindByStudentID(ctx, s.db, studentID)
	if err != nil {
		return feeplandomain.StudentFeePlan{}, err
	}
	if stored == nil {
		return feeplandomain.StudentFeePlan{}, feeplandomain.ErrNotFound
	}

	eventType := notify.EventFeePlanAssigned
	if existing != nil {
		eventType = notify.EventFeePlanUpdated
	}
	s.events.Dispatch(ctx, notify.Event{
		Type:       eventType,
		OccurredAt: now,
		Payload: map[string]any{
			"student_id": studentID.String(),
			"fee_plan":   stored,
		},
	})

	return *stored, nil
}

func (s *Service) GetByStudent(ctx context.Context, studentID string) (feeplandomain.StudentFeePlan, error) {
	id, err := s.parseStudentID(studentID)
	if err != nil {
		return feeplandomain.StudentFeePlan{}, err
	}

	sub, err := s.repo.FindByStudentID(ctx, s.db, id)
	if err != nil {
		return feeplandomain.StudentFeePlan{}, err
	}
	if sub == nil {
		return feeplandomain.StudentFeePlan{}, feeplandomain.ErrNotFound
	}
	return *sub, nil
}

func (s *Service) SetActive(ctx context.Context, studentID string, active bool) (feeplandomain.StudentFeePlan, error) {
	id, err := s.parseStudentID(studentID)
	if err != nil {
		return feeplandomain.StudentFeePlan{}, err
	}

	sub, err := s.repo.FindByStudentID(ctx, s.db, id)
	if err != nil {
		return feeplandomain.StudentFeePlan{}, err
	}
	if sub == nil {
		return feeplandomain.StudentFeePlan{}, feeplandomain.ErrNotFound
	}

	if err := s.authorizeByStudentID(ctx, id); err != nil {
		return feeplandomain.StudentFeePlan{}, err
	}

	if sub.IsActive == active {
		return *sub, nil
	}

	if err := s.repo.UpdateActive(ctx, s.db, id, active); err != nil {
		return feeplandomain.StudentFeePlan{}, err
	}
	sub.IsActive = active
	sub.UpdatedAt = s.clock.Now()

	s.events.Dispatch(ctx, notify.Event{
		Type:       notify.EventFeePlanUpdated,
		OccurredAt: sub.UpdatedAt,
		Payload: map[string]any{
			"student_id": id.String(),
			"is_active":  active,
		},
	})
	return *sub, nil
}

func (s *Service) Delete(ctx context.Context, studentID string) error {
	id, err := s.parseStudentID(studentID)
	if err != nil {
		return err
	}

	sub, err := s.repo.FindByStudentID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if sub == nil {
		return feeplandomain.ErrNotFound
	}

	if err := s.authorizeByStudentID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.DeleteByStudentID(ctx, s.db, id); err != nil {
		return err
	}

	s.events.Dispatch(ctx, notify.Event{
		Type:       notify.EventFeePlanRemoved,
		OccurredAt: s.clock.Now(),
		Payload: map[string]any{
			"student_id": id.String(),
		},
	})
	return nil
}

// planCoversStudent reports whether the plan's owner scope contains the
// student. Organization-owned plans cover every student of the
// organization; club-owned plans only that club's members.
func (s *Service) planCoversStudent(owner plandomain.Owner, student *directorydomain.Student) bool {
	switch owner.Type {
	case plandomain.OwnerTypeOrganization:
		return owner.ID == student.OrganizationID
	case plandomain.OwnerTypeClub:
		return student.ClubID != nil && *student.ClubID == owner.ID
	default:
		return false
	}
}

// authorize checks the acting caller against the target student. Requests
// without a scope come from internal callers and pass.
func (s *Service) authorize(ctx context.Context, student *directorydomain.Student) error {
	scope, ok := actorscope.FromContext(ctx)
	if !ok {
		return nil
	}

	switch scope.Role {
	case actorscope.RoleAdmin:
		return nil
	case actorscope.RoleOrganization:
		if scope.ID == student.OrganizationID {
			return nil
		}
	case actorscope.RoleClub:
		if student.ClubID != nil && *student.ClubID == scope.ID {
			return nil
		}
	}
	return feeplandomain.ErrScopeForbidden
}

func (s *Service) authorizeByStudentID(ctx context.Context, id snowflake.ID) error {
	if _, ok := actorscope.FromContext(ctx); !ok {
		return nil
	}
	student, err := s.directory.FindStudent(ctx, id)
	if err != nil {
		return err
	}
	if student == nil {
		return feeplandomain.ErrStudentNotFound
	}
	return s.authorize(ctx, student)
}

func (s *Service) parseStudentID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, feeplandomain.ErrInvalidStudent
	}
	return id, nil
}
