package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/clubledger/internal/clock"
	currencydomain "github.com/clubworks/clubledger/internal/currency/domain"
	directorydomain "github.com/clubworks/clubledger/internal/directory/domain"
	plandomain "github.com/clubworks/clubledger/internal/plan/domain"
	"github.com/clubworks/clubledger/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  plandomain.Repository

	Currencies currencydomain.Directory
	Directory  directorydomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  plandomain.Repository

	currencies currencydomain.Directory
	directory  directorydomain.Repository
}

func NewService(p Params) plandomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("plan.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,

		currencies: p.Currencies,
		directory:  p.Directory,
	}
}

func (s *Service) Create(ctx context.Context, req plandomain.CreatePlanRequest) (plandomain.Plan, error) {
	if !req.Owner.IsValid() {
		return plandomain.Plan{}, plandomain.ErrInvalidOwner
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return plandomain.Plan{}, plandomain.ErrInvalidName
	}
	if req.BaseAmount.IsNegative() {
		return plandomain.Plan{}, plandomain.ErrInvalidBaseAmount
	}

	if err := s.ensureOwnerExists(ctx, req.Owner); err != nil {
		return plandomain.Plan{}, err
	}

	currency, err := s.currencies.LookupActive(ctx, req.CurrencyCode)
	if err != nil {
		return plandomain.Plan{}, plandomain.ErrInvalidCurrency
	}

	now := s.clock.Now()
	plan := plandomain.Plan{
		ID:           s.genID.Generate(),
		OwnerType:    req.Owner.Type,
		OwnerID:      req.Owner.ID,
		Name:         name,
		Description:  strings.TrimSpace(req.Description),
		BaseAmount:   req.BaseAmount,
		CurrencyCode: currency.Code,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Metadata != nil {
		plan.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Insert(ctx, s.db, &plan); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return plandomain.Plan{}, plandomain.ErrDuplicateName
		}
		return plandomain.Plan{}, err
	}

	return plan, nil
}

func (s *Service) Update(ctx context.Context, req plandomain.UpdatePlanRequest) (plandomain.Plan, error) {
	id, err := s.parseID(req.PlanID)
	if err != nil {
		return plandomain.Plan{}, err
	}

	plan, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return plandomain.Plan{}, err
	}
	if plan == nil {
		return plandomain.Plan{}, plandomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return plandomain.Plan{}, plandomain.ErrInvalidName
		}
		plan.Name = name
	}
	if req.Description != nil {
		plan.Description = strings.TrimSpace(*req.Description)
	}
	if req.BaseAmount != nil {
		if req.BaseAmount.IsNegative() {
			return plandomain.Plan{}, plandomain.ErrInvalidBaseAmount
		}
		plan.BaseAmount = *req.BaseAmount
	}
	if req.CurrencyCode != nil {
		currency, err := s.currencies.LookupActive(ctx, *req.CurrencyCode)
		if err != nil {
			return plandomain.Plan{}, plandomain.ErrInvalidCurrency
		}
		plan.CurrencyCode = currency.Code
	}
	plan.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, plan); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return plandomain.Plan{}, plandomain.ErrDuplicateName
		}
		return plandomain.Plan{}, err
	}

	return *plan, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (plandomain.Plan, error) {
	planID, err := s.parseID(id)
	if err != nil {
		return plandomain.Plan{}, err
	}

	plan, err := s.repo.FindByID(ctx, s.db, planID)
	if err != nil {
		return plandomain.Plan{}, err
	}
	if plan == nil {
		return plandomain.Plan{}, plandomain.ErrNotFound
	}
	return *plan, nil
}

func (s *Service) List(ctx context.Context, req plandomain.ListPlanRequest) ([]plandomain.Plan, error) {
	if !req.Owner.IsValid() {
		return nil, plandomain.ErrInvalidOwner
	}
	return s.repo.ListByOwner(ctx, s.db, req.Owner, req.OnlyActive)
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (plandomain.Plan, error) {
	planID, err := s.parseID(id)
	if err != nil {
		return plandomain.Plan{}, err
	}

	plan, err := s.repo.FindByID(ctx, s.db, planID)
	if err != nil {
		return plandomain.Plan{}, err
	}
	if plan == nil {
		return plandomain.Plan{}, plandomain.ErrNotFound
	}

	if plan.IsActive == active {
		return *plan, nil
	}

	plan.IsActive = active
	plan.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, plan); err != nil {
		return plandomain.Plan{}, err
	}
	return *plan, nil
}

// Delete removes a plan outright. Subscriptions still pointing at it fall
// back to their custom amount at generation time.
func (s *Service) Delete(ctx context.Context, id string) error {
	planID, err := s.parseID(id)
	if err != nil {
		return err
	}

	plan, err := s.repo.FindByID(ctx, s.db, planID)
	if err != nil {
		return err
	}
	if plan == nil {
		return plandomain.ErrNotFound
	}

	return s.repo.Delete(ctx, s.db, planID)
}

func (s *Service) ensureOwnerExists(ctx context.Context, owner plandomain.Owner) error {
	switch owner.Type {
	case plandomain.OwnerTypeOrganization:
		org, err := s.directory.FindOrganization(ctx, owner.ID)
		if err != nil {
			return err
		}
		if org == nil {
			return plandomain.ErrOwnerNotFound
		}
	case plandomain.OwnerTypeClub:
		club, err := s.directory.FindClub(ctx, owner.ID)
		if err != nil {
			return err
		}
		if club == nil {
			return plandomain.ErrOwnerNotFound
		}
	default:
		return plandomain.ErrInvalidOwner
	}
	return nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, plandomain.ErrInvalidPlan
	}
	return id, nil
}
