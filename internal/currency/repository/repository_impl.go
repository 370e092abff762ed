package repository

import (
	"context"
	"strings"

	currencydomain "github.com/clubworks/clubledger/internal/currency/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) currencydomain.Repository {
	return &repo{db: db}
}

func (r *repo) Lookup(ctx context.Context, code string) (*currencydomain.Currency, error) {
	var c currencydomain.Currency
	err := r.db.WithContext(ctx).Raw(
		`SELECT code, name, is_active, created_at, updated_at
		 FROM currencies WHERE code = ?`,
		strings.ToUpper(strings.TrimSpace(code)),
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.Code == "" {
		return nil, nil
	}
	return &c, nil
}
