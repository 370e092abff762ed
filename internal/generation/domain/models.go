// Package domain defines the bulk payment generation contract. One run
// walks a cohort of students for one billing month, creates a charge for
// every student due that month and accounts for everyone it skipped.
package domain

import (
	"context"
	"errors"

	paymentdomain "github.com/clubworks/clubledger/internal/payment/domain"
	"github.com/shopspring/decimal"
)

// SkipReason explains why a cohort member received no charge.
type SkipReason string

const (
	SkipNoActiveSubscription  SkipReason = "no_active_subscription"
	SkipMisconfiguredCurrency SkipReason = "misconfigured_currency"
	SkipMisconfiguredAmount   SkipReason = "misconfigured_amount"
	SkipInvalidIntervalCount  SkipReason = "invalid_interval_count"
	SkipNotDueThisCycle       SkipReason = "not_due_this_cycle"
	SkipAlreadyHasPayment     SkipReason = "already_has_payment"
)

// GenerateRequest selects the cohort and the billing month. Exactly one
// of ClubID, OrganizationID or StudentIDs picks the cohort.
type GenerateRequest struct {
	Month          string   `json:"month"`
	ClubID         *string  `json:"club_id,omitempty"`
	OrganizationID *string  `json:"organization_id,omitempty"`
	StudentIDs     []string `json:"student_ids,omitempty"`
}

// SkippedStudent is one cohort member left without a new charge.
type SkippedStudent struct {
	StudentID string     `json:"student_id"`
	Reason    SkipReason `json:"reason"`
}

// Result accounts for the whole cohort: every student either appears in
// Payments or in Skipped, never in both and never in neither.
type Result struct {
	Month            string                     `json:"month"`
	Preview          bool                       `json:"preview"`
	Payments         []paymentdomain.Payment    `json:"payments"`
	Skipped          []SkippedStudent           `json:"skipped"`
	CreatedCount     int                        `json:"created_count"`
	SkippedCount     int                        `json:"skipped_count"`
	TotalsByCurrency map[string]decimal.Decimal `json:"totals_by_currency"`
}

type Service interface {
	// Preview computes the charges a commit would create without writing
	// anything.
	Preview(ctx context.Context, req GenerateRequest) (Result, error)
	// Commit creates the charges. Safe to repeat for the same month; the
	// second run creates nothing and reports the cohort as skipped.
	Commit(ctx context.Context, req GenerateRequest) (Result, error)
}

var (
	ErrInvalidCohort    = errors.New("invalid_cohort")
	ErrCohortNotFound   = errors.New("cohort_not_found")
	ErrGenerationLocked = errors.New("generation_in_progress")
)
