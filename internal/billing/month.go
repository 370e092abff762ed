// Package billing holds the pure calculation core of the fee engine:
// calendar-month arithmetic, discount application and cycle eligibility.
// Nothing in this package touches storage.
package billing

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidMonth = errors.New("invalid_month")

// Month is a calendar month in the form YYYY-MM. The zero value is the
// zero month and reports IsZero.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, ErrInvalidMonth
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf truncates t to its calendar month.
func MonthOf(t time.Time) Month {
	u := t.UTC()
	return Month{Year: u.Year(), Month: u.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m Month) Before(o Month) bool {
	return m.index() < o.index()
}

// MonthsSince returns the number of whole calendar months from `from` to
// m. Negative when m precedes from. Day-of-month never enters into it, so
// variable month lengths cause no drift.
func (m Month) MonthsSince(from Month) int {
	return m.index() - from.index()
}

// First returns midnight UTC on the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns midnight UTC on the last calendar day of the month.
func (m Month) LastDay() time.Time {
	return m.First().AddDate(0, 1, -1)
}

func (m Month) Next() Month {
	t := m.First().AddDate(0, 1, 0)
	return MonthOf(t)
}

func (m Month) index() int {
	return m.Year*12 + int(m.Month) - 1
}

// Value implements driver.Valuer; months persist as YYYY-MM text.
func (m Month) Value() (driver.Value, error) {
	if m.IsZero() {
		return nil, nil
	}
	return m.String(), nil
}

// Scan implements sql.Scanner.
func (m *Month) Scan(src any) error {
	if src == nil {
		*m = Month{}
		return nil
	}
	switch v := src.(type) {
	case string:
		parsed, err := ParseMonth(v)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case []byte:
		parsed, err := ParseMonth(string(v))
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case time.Time:
		*m = MonthOf(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Month", src)
	}
}

func (m Month) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Month) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*m = Month{}
		return nil
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
