package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// AssignFeePlanRequest carries the raw assignment input. Exactly one of
// PlanID or CustomAmount must be meaningfully set; discount fields are
// normalized once at the service boundary.
type AssignFeePlanRequest struct {
	StudentID     string           `json:"student_id"`
	PlanID        *string          `json:"plan_id,omitempty"`
	CustomAmount  *decimal.Decimal `json:"custom_amount,omitempty"`
	CurrencyCode  *string          `json:"currency_code,omitempty"`
	Interval      string           `json:"interval"`
	IntervalCount *int32           `json:"interval_count,omitempty"`
	DiscountType  *string          `json:"discount_type,omitempty"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty"`
	EffectiveFrom *string          `json:"effective_from,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

type Service interface {
	Assign(ctx context.Context, req AssignFeePlanRequest) (StudentFeePlan, error)
	GetByStudent(ctx context.Context, studentID string) (StudentFeePlan, error)
	SetActive(ctx context.Context, studentID string, active bool) (StudentFeePlan, error)
	Delete(ctx context.Context, studentID string) error
}

var (
	ErrNotFound             = errors.New("fee_plan_not_found")
	ErrInvalidStudent       = errors.New("invalid_student")
	ErrStudentNotFound      = errors.New("fee_plan_student_not_found")
	ErrInvalidPlan          = errors.New("invalid_plan_reference")
	ErrPlanNotFound         = errors.New("referenced_plan_not_found")
	ErrPlanInactive         = errors.New("referenced_plan_inactive")
	ErrPlanScopeMismatch    = errors.New("plan_scope_mismatch")
	ErrScopeForbidden       = errors.New("scope_forbidden")
	ErrMissingAmount        = errors.New("missing_amount")
	ErrInvalidCustomAmount  = errors.New("invalid_custom_amount")
	ErrMissingCurrency      = errors.New("missing_currency")
	ErrInvalidCurrency      = errors.New("invalid_currency")
	ErrInvalidEffectiveFrom = errors.New("invalid_effective_from")
)
