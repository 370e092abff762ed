package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type CreatePlanRequest struct {
	Owner        Owner           `json:"owner"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	BaseAmount   decimal.Decimal `json:"base_amount"`
	CurrencyCode string          `json:"currency_code"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
}

type UpdatePlanRequest struct {
	PlanID       string           `json:"-"`
	Name         *string          `json:"name,omitempty"`
	Description  *string          `json:"description,omitempty"`
	BaseAmount   *decimal.Decimal `json:"base_amount,omitempty"`
	CurrencyCode *string          `json:"currency_code,omitempty"`
}

type ListPlanRequest struct {
	Owner      Owner
	OnlyActive bool
}

type Service interface {
	Create(ctx context.Context, req CreatePlanRequest) (Plan, error)
	Update(ctx context.Context, req UpdatePlanRequest) (Plan, error)
	GetByID(ctx context.Context, id string) (Plan, error)
	List(ctx context.Context, req ListPlanRequest) ([]Plan, error)
	SetActive(ctx context.Context, id string, active bool) (Plan, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrNotFound          = errors.New("plan_not_found")
	ErrInvalidPlan       = errors.New("invalid_plan")
	ErrInvalidOwner      = errors.New("invalid_owner")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidBaseAmount = errors.New("invalid_base_amount")
	ErrInvalidCurrency   = errors.New("invalid_currency")
	ErrDuplicateName     = errors.New("duplicate_plan_name")
	ErrOwnerNotFound     = errors.New("owner_not_found")
)
