// Package domain defines the organization/club/student hierarchy consumed
// by the billing core. Member management itself lives in the surrounding
// application; this service performs read-only lookups for scope checks
// and cohort selection.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Organization struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Organization) TableName() string { return "organizations" }

type Club struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	OrganizationID snowflake.ID `json:"organization_id" gorm:"not null;index"`
	Name           string       `json:"name" gorm:"type:text;not null"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Club) TableName() string { return "clubs" }

type Student struct {
	ID             snowflake.ID  `json:"id" gorm:"primaryKey"`
	OrganizationID snowflake.ID  `json:"organization_id" gorm:"not null;index"`
	ClubID         *snowflake.ID `json:"club_id,omitempty" gorm:"index"`
	FullName       string        `json:"full_name" gorm:"type:text;not null"`
	CreatedAt      time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Student) TableName() string { return "students" }

var (
	ErrStudentNotFound      = errors.New("student_not_found")
	ErrClubNotFound         = errors.New("club_not_found")
	ErrOrganizationNotFound = errors.New("organization_not_found")
)

type Repository interface {
	FindStudent(ctx context.Context, id snowflake.ID) (*Student, error)
	FindClub(ctx context.Context, id snowflake.ID) (*Club, error)
	FindOrganization(ctx context.Context, id snowflake.ID) (*Organization, error)
	ListStudentsByClub(ctx context.Context, clubID snowflake.ID) ([]Student, error)
	ListStudentsByOrganization(ctx context.Context, orgID snowflake.ID) ([]Student, error)
	ListStudentsByIDs(ctx context.Context, ids []snowflake.ID) ([]Student, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
}
