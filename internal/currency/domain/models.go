// Package domain defines the currency directory consumed by the billing
// core. Exchange rates and currency master data are maintained elsewhere;
// this service only reads code and active flag.
package domain

import (
	"context"
	"errors"
	"time"
)

// Currency is one row of the currency master list.
type Currency struct {
	Code      string    `json:"code" gorm:"primaryKey;type:text"`
	Name      string    `json:"name" gorm:"type:text"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Currency) TableName() string { return "currencies" }

var (
	ErrNotFound = errors.New("currency_not_found")
	ErrInactive = errors.New("currency_inactive")
)

type Repository interface {
	Lookup(ctx context.Context, code string) (*Currency, error)
}

// Directory is the read surface the billing core depends on. LookupActive
// resolves a code to an active currency or fails with ErrNotFound or
// ErrInactive.
type Directory interface {
	LookupActive(ctx context.Context, code string) (*Currency, error)
}
