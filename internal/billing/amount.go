package billing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountType enumerates how a discount value is applied.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

var (
	ErrInvalidDiscountType  = errors.New("invalid_discount_type")
	ErrInvalidDiscountValue = errors.New("invalid_discount_value")
)

var hundred = decimal.NewFromInt(100)

// Discount is a normalized discount. The zero value means no discount.
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

func (d Discount) IsZero() bool {
	return d.Type == ""
}

// NormalizeDiscount folds the nullable discount pair from the assignment
// boundary into a single value: an absent type yields the zero Discount
// regardless of value, a present type requires a non-negative value.
func NormalizeDiscount(rawType *string, rawValue *decimal.Decimal) (Discount, error) {
	if rawType == nil || strings.TrimSpace(*rawType) == "" {
		return Discount{}, nil
	}

	t := DiscountType(strings.ToLower(strings.TrimSpace(*rawType)))
	if t != DiscountPercent && t != DiscountFixed {
		return Discount{}, ErrInvalidDiscountType
	}
	if rawValue == nil {
		return Discount{}, ErrInvalidDiscountValue
	}
	if rawValue.IsNegative() {
		return Discount{}, ErrInvalidDiscountValue
	}
	return Discount{Type: t, Value: *rawValue}, nil
}

// EffectiveAmount applies a normalized discount to a base amount for one
// billing cycle. The result never goes below zero: percent discounts of
// 100 or more and fixed discounts exceeding the base both floor at zero.
func EffectiveAmount(base decimal.Decimal, d Discount) decimal.Decimal {
	switch d.Type {
	case DiscountPercent:
		reduced := base.Sub(base.Mul(d.Value).Div(hundred))
		if reduced.IsNegative() {
			return decimal.Zero
		}
		return reduced
	case DiscountFixed:
		reduced := base.Sub(d.Value)
		if reduced.IsNegative() {
			return decimal.Zero
		}
		return reduced
	default:
		return base
	}
}
