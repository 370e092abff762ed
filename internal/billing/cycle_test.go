package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMonth(t *testing.T, s string) Month {
	t.Helper()
	m, err := ParseMonth(s)
	require.NoError(t, err)
	return m
}

func TestIsDueMonthly(t *testing.T) {
	from := mustMonth(t, "2024-01")

	due, err := IsDue(IntervalMonthly, 0, &from, mustMonth(t, "2024-06"))
	require.NoError(t, err)
	assert.True(t, due)

	// Future effective date is never due.
	future := mustMonth(t, "2024-07")
	due, err = IsDue(IntervalMonthly, 0, &future, mustMonth(t, "2024-06"))
	require.NoError(t, err)
	assert.False(t, due)
}

func TestIsDueMonthlyWithoutAnchor(t *testing.T) {
	due, err := IsDue(IntervalMonthly, 0, nil, mustMonth(t, "2024-06"))
	require.NoError(t, err)
	assert.True(t, due)
}

func TestIsDueQuarterly(t *testing.T) {
	from := mustMonth(t, "2024-01")

	cases := map[string]bool{
		"2024-01": true,  // 0 months elapsed
		"2024-03": false, // 2 months elapsed
		"2024-04": true,  // 3 months elapsed
		"2024-07": true,
		"2024-08": false,
	}
	for target, want := range cases {
		due, err := IsDue(IntervalQuarterly, 0, &from, mustMonth(t, target))
		require.NoError(t, err)
		assert.Equal(t, want, due, "target %s", target)
	}
}

func TestIsDueSemesterAndYearly(t *testing.T) {
	from := mustMonth(t, "2023-09")

	due, err := IsDue(IntervalSemester, 0, &from, mustMonth(t, "2024-03"))
	require.NoError(t, err)
	assert.True(t, due)

	due, err = IsDue(IntervalYearly, 0, &from, mustMonth(t, "2024-09"))
	require.NoError(t, err)
	assert.True(t, due)

	due, err = IsDue(IntervalYearly, 0, &from, mustMonth(t, "2024-03"))
	require.NoError(t, err)
	assert.False(t, due)
}

func TestIsDueCustom(t *testing.T) {
	from := mustMonth(t, "2024-01")

	due, err := IsDue(IntervalCustom, 5, &from, mustMonth(t, "2024-06"))
	require.NoError(t, err)
	assert.True(t, due)

	due, err = IsDue(IntervalCustom, 5, &from, mustMonth(t, "2024-05"))
	require.NoError(t, err)
	assert.False(t, due)
}

func TestIsDueCustomRequiresCount(t *testing.T) {
	from := mustMonth(t, "2024-01")

	_, err := IsDue(IntervalCustom, 0, &from, mustMonth(t, "2024-06"))
	assert.ErrorIs(t, err, ErrInvalidIntervalCount)

	_, err = IsDue(IntervalCustom, -2, &from, mustMonth(t, "2024-06"))
	assert.ErrorIs(t, err, ErrInvalidIntervalCount)
}

func TestParseInterval(t *testing.T) {
	got, err := ParseInterval(" Quarterly ")
	require.NoError(t, err)
	assert.Equal(t, IntervalQuarterly, got)

	_, err = ParseInterval("weekly")
	assert.ErrorIs(t, err, ErrInvalidInterval)
}
