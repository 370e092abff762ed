package option

import (
	"fmt"
	"strconv"

	"github.com/clubworks/clubledger/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement before execution.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type optionFunc func(db *gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// Operator is a comparison operator for Condition filters.
type Operator string

const (
	EQ  Operator = "="
	GT  Operator = ">"
	GTE Operator = ">="
	LT  Operator = "<"
	LTE Operator = "<="
)

// Condition is a single field comparison.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// ApplyOperator adds a comparison condition to the query.
func ApplyOperator(cond Condition) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf("%s %s ?", cond.Field, cond.Operator), cond.Value)
	})
}

// WithLimit caps the number of returned rows.
func WithLimit(limit int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

// WithSortBy orders results by a whitelisted column.
func WithSortBy(column, direction string, allowed map[string]bool) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if allowed != nil && !allowed[column] {
			return db
		}
		if direction != "asc" && direction != "desc" {
			direction = "desc"
		}
		return db.Order(fmt.Sprintf("%s %s", column, direction))
	})
}

// ApplyPagination applies cursor pagination. One extra row is fetched so
// the caller can detect whether more pages exist.
func ApplyPagination(p pagination.Pagination) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		size := p.PageSize
		if size <= 0 {
			size = 10
		}
		if p.PageToken != "" {
			cursor, err := pagination.DecodeCursor(p.PageToken)
			switch {
			case err != nil:
			case cursor.ID != "":
				// Numeric ids avoid per-driver timestamp encodings.
				if id, perr := strconv.ParseInt(cursor.ID, 10, 64); perr == nil {
					db = db.Where("id < ?", id)
				}
			case cursor.CreatedAt != "":
				db = db.Where("created_at < ?", cursor.CreatedAt)
			}
		}
		return db.Limit(size + 1)
	})
}
