package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherview/internal/types"
)

var utcMinus5 = time.FixedZone("UTC-5", -5*3600)

func entryAt(t time.Time, condition string) types.ForecastEntry {
	e := types.ForecastEntry{Dt: t.Unix(), Main: types.MainReadings{Temp: 20, Humidity: 50}}
	if condition != "" {
		e.Weather = []types.Condition{{Main: condition}}
	}
	return e
}

func mustDate(t *testing.T, value string) *Date {
	t.Helper()
	d, err := ParseDate(value)
	require.NoError(t, err)
	return &d
}

func TestLocalDate_NegativeOffsetAcrossMidnight(t *testing.T) {
	dt := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC).Unix()
	assert.Equal(t, Date{Year: 2024, Month: time.March, Day: 10}, LocalDate(dt, utcMinus5))
}

func TestLocalDate_ShiftsByZoneOffsetBeforeExtracting(t *testing.T) {
	utcPlus9 := time.FixedZone("UTC+9", 9*3600)
	dt := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC).Unix()

	// 10:00Z shifted by +9h reads 19:00, which is 04:00 next day in UTC+9.
	assert.Equal(t, Date{Year: 2024, Month: time.March, Day: 11}, LocalDate(dt, utcPlus9))
	assert.Equal(t, Date{Year: 2024, Month: time.March, Day: 10}, LocalDate(dt, time.UTC))
	assert.Equal(t, Date{Year: 2024, Month: time.March, Day: 10}, LocalDate(dt, nil))
}

func TestIsSameDay(t *testing.T) {
	a := Date{Year: 2024, Month: time.March, Day: 10}
	assert.True(t, IsSameDay(a, Date{Year: 2024, Month: time.March, Day: 10}))
	assert.False(t, IsSameDay(a, Date{Year: 2024, Month: time.March, Day: 11}))
	assert.False(t, IsSameDay(a, Date{Year: 2024, Month: time.April, Day: 10}))
	assert.False(t, IsSameDay(a, Date{Year: 2023, Month: time.March, Day: 10}))
}

func TestAddDays_CrossesMonthAndYear(t *testing.T) {
	assert.Equal(t, "2024-03-01", AddDays(Date{Year: 2024, Month: time.February, Day: 29}, 1).String())
	assert.Equal(t, "2025-01-02", AddDays(Date{Year: 2024, Month: time.December, Day: 31}, 2).String())
	assert.Equal(t, "2024-02-28", AddDays(Date{Year: 2024, Month: time.March, Day: 1}, -2).String())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.March, Day: 10}, d)

	for _, bad := range []string{"", "03/10/2024", "2024-13-01", "2024-3-1"} {
		_, err := ParseDate(bad)
		var appErr *types.AppError
		require.ErrorAs(t, err, &appErr, "input %q", bad)
		assert.Equal(t, types.ErrCodeValidationInvalidDate, appErr.Code)
	}
}

func TestSelectFilteredForecast_NoFiltersReturnsInput(t *testing.T) {
	entries := []types.ForecastEntry{
		entryAt(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "Rain"),
		entryAt(time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC), "Clear"),
	}

	out := SelectFilteredForecast(entries, Filter{}, time.UTC)

	require.Equal(t, entries, out)
	assert.Same(t, &entries[0], &out[0])
	assert.Nil(t, SelectFilteredForecast(nil, Filter{}, time.UTC))
}

func TestSelectFilteredForecast_SelectedDateMatchesNextDay(t *testing.T) {
	onTenth := entryAt(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC), "Clear")
	onEleventh := entryAt(time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC), "Clear")
	entries := []types.ForecastEntry{onTenth, onEleventh}

	out := SelectFilteredForecast(entries, Filter{Date: mustDate(t, "2024-03-10")}, time.UTC)

	assert.Equal(t, []types.ForecastEntry{onEleventh}, out)
}

func TestSelectFilteredForecast_ConditionIsCaseSensitive(t *testing.T) {
	upper := entryAt(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "Rain")
	lower := entryAt(time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC), "rain")
	none := entryAt(time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC), "")
	entries := []types.ForecastEntry{upper, lower, none}

	assert.Equal(t, []types.ForecastEntry{upper}, SelectFilteredForecast(entries, Filter{Condition: "Rain"}, time.UTC))
	assert.Equal(t, []types.ForecastEntry{lower}, SelectFilteredForecast(entries, Filter{Condition: "rain"}, time.UTC))
	assert.Empty(t, SelectFilteredForecast(entries, Filter{Condition: "Hail"}, time.UTC))
}

func TestSelectFilteredForecast_PrimaryConditionOnly(t *testing.T) {
	e := types.ForecastEntry{
		Dt:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC).Unix(),
		Weather: []types.Condition{{Main: "Clouds"}, {Main: "Rain"}},
	}

	assert.Empty(t, SelectFilteredForecast([]types.ForecastEntry{e}, Filter{Condition: "Rain"}, time.UTC))
}

func TestSelectFilteredForecast_CombinedFiltersIdempotentAndOrdered(t *testing.T) {
	base := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	conditions := []string{"Rain", "Clear", "Rain", "Clouds", "Rain", "Rain", "Snow", "Rain"}
	entries := make([]types.ForecastEntry, 0, len(conditions)+2)
	entries = append(entries, entryAt(base.Add(-3*time.Hour), "Rain"))
	for i, c := range conditions {
		entries = append(entries, entryAt(base.Add(time.Duration(i)*3*time.Hour), c))
	}
	entries = append(entries, entryAt(base.Add(24*time.Hour), "Rain"))

	f := Filter{Date: mustDate(t, "2024-03-10"), Condition: "Rain"}
	first := SelectFilteredForecast(entries, f, time.UTC)
	second := SelectFilteredForecast(entries, f, time.UTC)

	assert.Equal(t, first, second)
	require.Len(t, first, 5)
	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].Dt, first[i].Dt)
	}
	for _, e := range first {
		assert.Equal(t, "Rain", e.PrimaryCondition())
		assert.Equal(t, "2024-03-11", LocalDate(e.Dt, time.UTC).String())
	}
}

func TestIconURL(t *testing.T) {
	assert.Equal(t, "http://openweathermap.org/img/wn/01d.png", IconURL("01d"))
	assert.Empty(t, IconURL(""))
}
