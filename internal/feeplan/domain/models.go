// Package domain contains the student fee-plan subscription model. Each
// student holds at most one subscription, enforced by a unique index on
// student_id; assignment is an upsert, never a second row.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/clubledger/internal/billing"
	"github.com/shopspring/decimal"
)

// StudentFeePlan binds a student to a plan or a fully custom amount,
// with interval and discount overrides that supersede plan defaults.
type StudentFeePlan struct {
	ID            snowflake.ID          `json:"id" gorm:"primaryKey"`
	StudentID     snowflake.ID          `json:"student_id" gorm:"not null;uniqueIndex:ux_fee_plan_student"`
	PlanID        *snowflake.ID         `json:"plan_id,omitempty" gorm:"index"`
	CustomAmount  *decimal.Decimal      `json:"custom_amount,omitempty" gorm:"type:numeric"`
	CurrencyCode  *string               `json:"currency_code,omitempty" gorm:"type:text"`
	Interval      billing.Interval      `json:"interval" gorm:"type:text;not null"`
	IntervalCount *int32                `json:"interval_count,omitempty"`
	DiscountType  *billing.DiscountType `json:"discount_type,omitempty" gorm:"type:text"`
	DiscountValue decimal.Decimal       `json:"discount_value" gorm:"type:numeric;not null;default:0"`
	EffectiveFrom *billing.Month        `json:"effective_from,omitempty" gorm:"type:text"`
	IsActive      bool                  `json:"is_active" gorm:"not null;default:true"`
	Notes         string                `json:"notes" gorm:"type:text"`
	CreatedAt     time.Time             `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time             `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (StudentFeePlan) TableName() string { return "student_fee_plans" }

// Discount returns the subscription's normalized discount.
func (p StudentFeePlan) Discount() billing.Discount {
	if p.DiscountType == nil {
		return billing.Discount{}
	}
	return billing.Discount{Type: *p.DiscountType, Value: p.DiscountValue}
}
