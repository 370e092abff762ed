package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, plan *Plan) error
	Update(ctx context.Context, db *gorm.DB, plan *Plan) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Plan, error)
	ListByOwner(ctx context.Context, db *gorm.DB, owner Owner, onlyActive bool) ([]Plan, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
