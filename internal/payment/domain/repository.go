package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/clubledger/internal/billing"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	// InsertIgnoreDuplicate writes the payment unless the student already
	// holds a charge for the same month. It reports whether a row was
	// written; losing the race to a concurrent insert is not an error.
	InsertIgnoreDuplicate(ctx context.Context, db *gorm.DB, payment *Payment) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	FindByStudentAndMonth(ctx context.Context, db *gorm.DB, studentID snowflake.ID, month billing.Month) (*Payment, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, payment *Payment) error
}
