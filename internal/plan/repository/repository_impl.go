package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/clubworks/clubledger/internal/plan/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() plandomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *plandomain.Plan) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO plans (
			id, owner_type, owner_id, name, description,
			base_amount, currency_code, is_active, metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.OwnerType,
		p.OwnerID,
		p.Name,
		p.Description,
		p.BaseAmount,
		p.CurrencyCode,
		p.IsActive,
		p.Metadata,
		p.CreatedAt,
		p.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, p *plandomain.Plan) error {
	return db.WithContext(ctx).Exec(
		`UPDATE plans
		 SET name = ?, description = ?, base_amount = ?, currency_code = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name,
		p.Description,
		p.BaseAmount,
		p.CurrencyCode,
		p.IsActive,
		p.UpdatedAt,
		p.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*plandomain.Plan, error) {
	var p plandomain.Plan
	err := db.WithContext(ctx).Raw(
		`SELECT id, owner_type, owner_id, name, description,
		 base_amount, currency_code, is_active, metadata, created_at, updated_at
		 FROM plans WHERE id = ?`, id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) ListByOwner(ctx context.Context, db *gorm.DB, owner plandomain.Owner, onlyActive bool) ([]plandomain.Plan, error) {
	query := `SELECT id, owner_type, owner_id, name, description,
	  base_amount, currency_code, is_active, metadata, created_at, updated_at
	  FROM plans WHERE owner_type = ? AND owner_id = ?`
	args := []any{owner.Type, owner.ID}
	if onlyActive {
		query += ` AND is_active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY created_at ASC`

	var items []plandomain.Plan
	err := db.WithContext(ctx).Raw(query, args...).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM plans WHERE id = ?`, id).Error
}
