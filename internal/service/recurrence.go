package service

import (
	"time"

	"github.com/hostelsync/hostelsync-api/internal/domain"
	apperrors "github.com/hostelsync/hostelsync-api/pkg/util"
)

// MaxSeriesDays bounds how long a recurring series may run.
const MaxSeriesDays = 366

// GenerateDates expands a recurrence rule into calendar dates from start to end inclusive.
// daysOfWeek uses 0 for Sunday and is only consulted for WEEKLY.
func GenerateDates(start, end time.Time, frequency domain.Frequency, daysOfWeek []int) ([]time.Time, error) {
	start, end = domain.DateOf(start), domain.DateOf(end)
	if !end.After(start) {
		return nil, fieldError("endDate", "endDate must be after startDate")
	}
	if end.Sub(start) > MaxSeriesDays*24*time.Hour {
		return nil, fieldError("endDate", "series may span at most 366 days")
	}

	var include func(time.Weekday) bool
	switch frequency {
	case domain.FrequencyDaily:
		include = func(time.Weekday) bool { return true }
	case domain.FrequencyWeekdays:
		include = func(d time.Weekday) bool { return d != time.Saturday && d != time.Sunday }
	case domain.FrequencyWeekends:
		include = func(d time.Weekday) bool { return d == time.Saturday || d == time.Sunday }
	case domain.FrequencyWeekly:
		if len(daysOfWeek) == 0 {
			return nil, fieldError("daysOfWeek", "daysOfWeek is required for WEEKLY frequency")
		}
		selected := make(map[time.Weekday]bool, len(daysOfWeek))
		for _, d := range daysOfWeek {
			if d < 0 || d > 6 {
				return nil, fieldError("daysOfWeek", "days must be between 0 (Sunday) and 6 (Saturday)")
			}
			selected[time.Weekday(d)] = true
		}
		include = func(d time.Weekday) bool { return selected[d] }
	default:
		return nil, fieldError("frequency", "frequency must be one of DAILY, WEEKLY, WEEKDAYS, WEEKENDS")
	}

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if include(d.Weekday()) {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return nil, apperrors.NewValidationError("recurrence rule produces no dates in range", nil)
	}
	return dates, nil
}
