package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	directorydomain "github.com/clubworks/clubledger/internal/directory/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) directorydomain.Repository {
	return &repo{db: db}
}

func (r *repo) FindStudent(ctx context.Context, id snowflake.ID) (*directorydomain.Student, error) {
	var s directorydomain.Student
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, organization_id, club_id, full_name, created_at, updated_at
		 FROM students WHERE id = ?`, id,
	).Scan(&s).Error
	if err != nil {
		return nil, err
	}
	if s.ID == 0 {
		return nil, nil
	}
	return &s, nil
}

func (r *repo) FindClub(ctx context.Context, id snowflake.ID) (*directorydomain.Club, error) {
	var c directorydomain.Club
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, organization_id, name, created_at, updated_at
		 FROM clubs WHERE id = ?`, id,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) FindOrganization(ctx context.Context, id snowflake.ID) (*directorydomain.Organization, error) {
	var o directorydomain.Organization
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, name, created_at, updated_at
		 FROM organizations WHERE id = ?`, id,
	).Scan(&o).Error
	if err != nil {
		return nil, err
	}
	if o.ID == 0 {
		return nil, nil
	}
	return &o, nil
}

func (r *repo) ListStudentsByClub(ctx context.Context, clubID snowflake.ID) ([]directorydomain.Student, error) {
	var items []directorydomain.Student
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, organization_id, club_id, full_name, created_at, updated_at
		 FROM students WHERE club_id = ? ORDER BY id`, clubID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListStudentsByOrganization(ctx context.Context, orgID snowflake.ID) ([]directorydomain.Student, error) {
	var items []directorydomain.Student
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, organization_id, club_id, full_name, created_at, updated_at
		 FROM students WHERE organization_id = ? ORDER BY id`, orgID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListStudentsByIDs(ctx context.Context, ids []snowflake.ID) ([]directorydomain.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []directorydomain.Student
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, organization_id, club_id, full_name, created_at, updated_at
		 FROM students WHERE id IN ? ORDER BY id`, ids,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListOrganizations(ctx context.Context) ([]directorydomain.Organization, error) {
	var items []directorydomain.Organization
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, name, created_at, updated_at FROM organizations ORDER BY id`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
