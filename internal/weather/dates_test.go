package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDateOptions_SixConsecutiveDays(t *testing.T) {
	now := time.Date(2024, 12, 29, 10, 0, 0, 0, time.UTC)

	opts := GenerateDateOptions(now, time.UTC, "")

	require.Len(t, opts, DateOptionCount)
	assert.Equal(t, []DateOption{
		{Value: "2024-12-29", Label: "12/29/2024"},
		{Value: "2024-12-30", Label: "12/30/2024"},
		{Value: "2024-12-31", Label: "12/31/2024"},
		{Value: "2025-01-01", Label: "1/1/2025"},
		{Value: "2025-01-02", Label: "1/2/2025"},
		{Value: "2025-01-03", Label: "1/3/2025"},
	}, opts)
}

func TestGenerateDateOptions_TodayIsTakenInLocation(t *testing.T) {
	now := time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)

	opts := GenerateDateOptions(now, utcMinus5, DateLayout)

	require.Len(t, opts, DateOptionCount)
	assert.Equal(t, "2024-03-09", opts[0].Value)
	assert.Equal(t, "2024-03-09", opts[0].Label)
}

func TestGenerateDateOptions_EachDayFollowsPrevious(t *testing.T) {
	now := time.Date(2024, 2, 26, 23, 59, 0, 0, time.UTC)

	opts := GenerateDateOptions(now, nil, "")

	prev, err := ParseDate(opts[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-26", prev.String())
	for _, opt := range opts[1:] {
		d, err := ParseDate(opt.Value)
		require.NoError(t, err)
		assert.Equal(t, AddDays(prev, 1), d)
		prev = d
	}
}

func TestGenerateDateOptions_RederivedPerCall(t *testing.T) {
	day1 := GenerateDateOptions(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), time.UTC, "")
	day2 := GenerateDateOptions(time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC), time.UTC, "")

	assert.Equal(t, "2024-03-10", day1[0].Value)
	assert.Equal(t, "2024-03-11", day2[0].Value)
	assert.Equal(t, day1[1], day2[0])
}
