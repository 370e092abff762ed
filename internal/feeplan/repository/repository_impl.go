package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	feeplandomain "github.com/clubworks/clubledger/internal/feeplan/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() feeplandomain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, p *feeplandomain.StudentFeePlan) error {
	// The conflict branch leaves id and created_at of the existing row
	// untouched; everything else is replaced.
	return db.WithContext(ctx).Exec(
		`INSERT INTO student_fee_plans (
			id, student_id, plan_id, custom_amount, currency_code,
			interval, interval_count, discount_type, discount_value,
			effective_from, is_active, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id) DO UPDATE SET
			plan_id = excluded.plan_id,
			custom_amount = excluded.custom_amount,
			currency_code = excluded.currency_code,
			interval = excluded.interval,
			interval_count = excluded.interval_count,
			discount_type = excluded.discount_type,
			discount_value = excluded.discount_value,
			effective_from = excluded.effective_from,
			is_active = excluded.is_active,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		p.ID,
		p.StudentID,
		p.PlanID,
		p.CustomAmount,
		p.CurrencyCode,
		p.Interval,
		p.IntervalCount,
		p.DiscountType,
		p.DiscountValue,
		p.EffectiveFrom,
		p.IsActive,
		p.Notes,
		p.CreatedAt,
		p.UpdatedAt,
	).Error
}

func (r *repo) FindByStudentID(ctx context.Context, db *gorm.DB, studentID snowflake.ID) (*feeplandomain.StudentFeePlan, error) {
	var p feeplandomain.StudentFeePlan
	err := db.WithContext(ctx).Raw(
		`SELECT id, student_id, plan_id, custom_amount, currency_code,
		 interval, interval_count, discount_type, discount_value,
		 effective_from, is_active, notes, created_at, updated_at
		 FROM student_fee_plans WHERE student_id = ?`,
		studentID,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) ListByStudentIDs(ctx context.Context, db *gorm.DB, studentIDs []snowflake.ID) ([]feeplandomain.StudentFeePlan, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	var plans []feeplandomain.StudentFeePlan
	err := db.WithContext(ctx).Raw(
		`SELECT id, student_id, plan_id, custom_amount, currency_code,
		 interval, interval_count, discount_type, discount_value,
		 effective_from, is_active, notes, created_at, updated_at
		 FROM student_fee_plans WHERE student_id IN ?`,
		studentIDs,
	).Scan(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repo) UpdateActive(ctx context.Context, db *gorm.DB, studentID snowflake.ID, active bool) error {
	return db.WithContext(ctx).Exec(
		`UPDATE student_fee_plans SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE student_id = ?`,
		active,
		studentID,
	).Error
}

func (r *repo) DeleteByStudentID(ctx context.Context, db *gorm.DB, studentID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM student_fee_plans WHERE student_id = ?`,
		studentID,
	).Error
}
