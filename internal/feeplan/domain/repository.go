package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Upsert inserts the subscription or, when the student already has
	// one, replaces it in place. Backed by the unique student_id index
	// so concurrent assigns cannot produce two rows.
	Upsert(ctx context.Context, db *gorm.DB, plan *StudentFeePlan) error
	FindByStudentID(ctx context.Context, db *gorm.DB, studentID snowflake.ID) (*StudentFeePlan, error)
	ListByStudentIDs(ctx context.Context, db *gorm.DB, studentIDs []snowflake.ID) ([]StudentFeePlan, error)
	UpdateActive(ctx context.Context, db *gorm.DB, studentID snowflake.ID, active bool) error
	DeleteByStudentID(ctx context.Context, db *gorm.DB, studentID snowflake.ID) error
}
