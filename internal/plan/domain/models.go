// Package domain contains the pricing plan catalog models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OwnerType discriminates who owns a plan.
type OwnerType string

const (
	OwnerTypeOrganization OwnerType = "organization"
	OwnerTypeClub         OwnerType = "club"
)

// Owner identifies the single organization or club a plan belongs to.
// Ownership is fixed at creation and never changes.
type Owner struct {
	Type OwnerType    `json:"type"`
	ID   snowflake.ID `json:"id"`
}

func (o Owner) IsValid() bool {
	if o.ID == 0 {
		return false
	}
	return o.Type == OwnerTypeOrganization || o.Type == OwnerTypeClub
}

// Plan is a pricing template. Name is unique within its owner scope.
type Plan struct {
	ID           snowflake.ID      `json:"id" gorm:"primaryKey"`
	OwnerType    OwnerType         `json:"owner_type" gorm:"type:text;not null;uniqueIndex:ux_plan_owner_name,priority:1"`
	OwnerID      snowflake.ID      `json:"owner_id" gorm:"not null;uniqueIndex:ux_plan_owner_name,priority:2"`
	Name         string            `json:"name" gorm:"type:text;not null;uniqueIndex:ux_plan_owner_name,priority:3"`
	Description  string            `json:"description" gorm:"type:text"`
	BaseAmount   decimal.Decimal   `json:"base_amount" gorm:"type:numeric;not null"`
	CurrencyCode string            `json:"currency_code" gorm:"type:text;not null"`
	IsActive     bool              `json:"is_active" gorm:"not null;default:true"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Plan) TableName() string { return "plans" }

// OwnerRef returns the plan's owner as a tagged value.
func (p Plan) OwnerRef() Owner {
	return Owner{Type: p.OwnerType, ID: p.OwnerID}
}
