package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/clubledger/internal/billing"
	paymentdomain "github.com/clubworks/clubledger/internal/payment/domain"
	"github.com/clubworks/clubledger/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() paymentdomain.Repository {
	return &repo{}
}

const insertSQL = `INSERT INTO payments (
	id, reference, student_id, plan_id, amount, currency_code,
	status, method, payment_month, pay_at, description, paid_at, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func insertArgs(p *paymentdomain.Payment) []any {
	return []any{
		p.ID,
		p.Reference,
		p.StudentID,
		p.PlanID,
		p.Amount,
		p.CurrencyCode,
		p.Status,
		p.Method,
		p.PaymentMonth,
		p.PayAt,
		p.Description,
		p.PaidAt,
		p.CreatedAt,
		p.UpdatedAt,
	}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *paymentdomain.Payment) error {
	return db.WithContext(ctx).Exec(insertSQL, insertArgs(p)...).Error
}

func (r *repo) InsertIgnoreDuplicate(ctx context.Context, gdb *gorm.DB, p *paymentdomain.Payment) (bool, error) {
	err := gdb.WithContext(ctx).Exec(insertSQL, insertArgs(p)...).Error
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*paymentdomain.Payment, error) {
	var p paymentdomain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM payments WHERE id = ?`, id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindByStudentAndMonth(ctx context.Context, db *gorm.DB, studentID snowflake.ID, month billing.Month) (*paymentdomain.Payment, error) {
	var p paymentdomain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM payments WHERE student_id = ? AND payment_month = ?`,
		studentID, month,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, p *paymentdomain.Payment) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payments SET status = ?, paid_at = ?, updated_at = ? WHERE id = ?`,
		p.Status, p.PaidAt, p.UpdatedAt, p.ID,
	).Error
}
