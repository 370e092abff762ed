package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestEffectiveAmountNoDiscount(t *testing.T) {
	got := EffectiveAmount(dec("150.50"), Discount{})
	assert.True(t, got.Equal(dec("150.50")))
}

func TestEffectiveAmountPercent(t *testing.T) {
	got := EffectiveAmount(dec("100"), Discount{Type: DiscountPercent, Value: dec("10")})
	assert.True(t, got.Equal(dec("90")), "got %s", got)

	got = EffectiveAmount(dec("80"), Discount{Type: DiscountPercent, Value: dec("25")})
	assert.True(t, got.Equal(dec("60")), "got %s", got)
}

func TestEffectiveAmountPercentFloorsAtZero(t *testing.T) {
	for _, value := range []string{"100", "110", "250"} {
		got := EffectiveAmount(dec("100"), Discount{Type: DiscountPercent, Value: dec(value)})
		assert.True(t, got.Equal(decimal.Zero), "percent %s produced %s", value, got)
		assert.False(t, got.IsNegative())
	}
}

func TestEffectiveAmountFixed(t *testing.T) {
	got := EffectiveAmount(dec("100"), Discount{Type: DiscountFixed, Value: dec("30")})
	assert.True(t, got.Equal(dec("70")))
}

func TestEffectiveAmountFixedFloorsAtZero(t *testing.T) {
	got := EffectiveAmount(dec("100"), Discount{Type: DiscountFixed, Value: dec("150")})
	assert.True(t, got.Equal(decimal.Zero))
}

func TestNormalizeDiscountAbsentType(t *testing.T) {
	d, err := NormalizeDiscount(nil, decPtr("15"))
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = NormalizeDiscount(strPtr("  "), decPtr("15"))
	require.NoError(t, err)
	assert.True(t, d.IsZero())
}

func TestNormalizeDiscountValidation(t *testing.T) {
	_, err := NormalizeDiscount(strPtr("bogus"), decPtr("10"))
	assert.ErrorIs(t, err, ErrInvalidDiscountType)

	_, err = NormalizeDiscount(strPtr("percent"), nil)
	assert.ErrorIs(t, err, ErrInvalidDiscountValue)

	_, err = NormalizeDiscount(strPtr("fixed"), decPtr("-5"))
	assert.ErrorIs(t, err, ErrInvalidDiscountValue)
}

func TestNormalizeDiscountAcceptsOversizedPercent(t *testing.T) {
	// Values above 100 are accepted here; EffectiveAmount floors at zero.
	d, err := NormalizeDiscount(strPtr("percent"), decPtr("120"))
	require.NoError(t, err)
	assert.Equal(t, DiscountPercent, d.Type)
	assert.True(t, EffectiveAmount(dec("100"), d).Equal(decimal.Zero))
}
