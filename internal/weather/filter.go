package weather

import (
	"fmt"
	"time"

	"weatherview/internal/types"
)

// selectedDateOffset is added to a selected date before matching entries.
// Selecting 2024-03-10 matches entries bucketed under 2024-03-11.
const selectedDateOffset = 1

// KnownConditions lists the condition labels offered for filtering. The filter
// itself accepts any label.
var KnownConditions = []string{"Clear", "Clouds", "Rain", "Snow", "Thunderstorm"}

const iconURLFormat = "http://openweathermap.org/img/wn/%s.png"

// Filter narrows a forecast. A nil Date or empty Condition means that filter is absent.
type Filter struct {
	Date      *Date
	Condition string
}

// Empty reports whether no filter is set.
func (f Filter) Empty() bool {
	return f.Date == nil && f.Condition == ""
}

// SelectFilteredForecast returns the entries matching f, in input order. With
// no filter set the input slice itself is returned. The date filter compares
// each entry's LocalDate in loc with f.Date advanced by one day; the condition
// filter compares the primary condition label exactly.
func SelectFilteredForecast(entries []types.ForecastEntry, f Filter, loc *time.Location) []types.ForecastEntry {
	if f.Empty() {
		return entries
	}

	var target Date
	if f.Date != nil {
		target = AddDays(*f.Date, selectedDateOffset)
	}

	out := make([]types.ForecastEntry, 0, len(entries))
	for _, e := range entries {
		if f.Date != nil && !IsSameDay(LocalDate(e.Dt, loc), target) {
			continue
		}
		if f.Condition != "" && (len(e.Weather) == 0 || e.PrimaryCondition() != f.Condition) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// IconURL returns the provider's image URL for a condition icon code.
func IconURL(icon string) string {
	if icon == "" {
		return ""
	}
	return fmt.Sprintf(iconURLFormat, icon)
}
