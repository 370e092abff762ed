// Package domain contains the payment ledger models. A payment is one
// charge owed by one student; generated charges carry the billing month
// they cover, ad-hoc charges leave it empty.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/clubledger/internal/billing"
	"github.com/shopspring/decimal"
)

// Status is the payment lifecycle state.
type Status string

const (
	StatusUnpaid   Status = "unpaid"
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUnpaid, StatusPending, StatusPaid, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// Payment is one charge row. The unique (student_id, payment_month) index
// is what makes bulk generation idempotent: a month can hold at most one
// generated charge per student, while rows with no month stay exempt.
type Payment struct {
	ID           snowflake.ID    `json:"id" gorm:"primaryKey"`
	Reference    string          `json:"reference" gorm:"type:text;not null;uniqueIndex:ux_payment_reference"`
	StudentID    snowflake.ID    `json:"student_id" gorm:"not null;uniqueIndex:ux_payment_student_month,priority:1"`
	PlanID       *snowflake.ID   `json:"plan_id,omitempty" gorm:"index"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric;not null"`
	CurrencyCode string          `json:"currency_code" gorm:"type:text;not null"`
	Status       Status          `json:"status" gorm:"type:text;not null;default:unpaid"`
	Method       string          `json:"method,omitempty" gorm:"type:text"`
	PaymentMonth *billing.Month  `json:"payment_month,omitempty" gorm:"type:text;uniqueIndex:ux_payment_student_month,priority:2"`
	PayAt        *time.Time      `json:"pay_at,omitempty"`
	Description  string          `json:"description" gorm:"type:text"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Payment) TableName() string { return "payments" }
