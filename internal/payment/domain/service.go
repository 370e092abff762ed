package domain

import (
	"context"
	"errors"

	"github.com/clubworks/clubledger/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest records one ad-hoc or backfilled charge. When
// PaymentMonth is set the charge counts against that month's generation
// slot and a second charge for the same month is rejected.
type CreatePaymentRequest struct {
	StudentID    string          `json:"student_id"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
	Method       string          `json:"method,omitempty"`
	PaymentMonth *string         `json:"payment_month,omitempty"`
	PayAt        *string         `json:"pay_at,omitempty"`
	Description  string          `json:"description,omitempty"`
}

type ListPaymentRequest struct {
	StudentID  string
	Month      string
	Status     string
	Pagination pagination.Pagination
}

type ListPaymentResponse struct {
	Payments []*Payment           `json:"payments"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

type Service interface {
	Create(ctx context.Context, req CreatePaymentRequest) (Payment, error)
	GetByID(ctx context.Context, id string) (Payment, error)
	List(ctx context.Context, req ListPaymentRequest) (ListPaymentResponse, error)
	UpdateStatus(ctx context.Context, id string, status string) (Payment, error)
}

var (
	ErrNotFound          = errors.New("payment_not_found")
	ErrInvalidPayment    = errors.New("invalid_payment")
	ErrInvalidStudent    = errors.New("invalid_student")
	ErrStudentNotFound   = errors.New("payment_student_not_found")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidCurrency   = errors.New("invalid_currency")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidPayAt      = errors.New("invalid_pay_at")
	ErrDuplicateForMonth = errors.New("payment_exists_for_month")
)
