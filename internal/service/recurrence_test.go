package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelsync/hostelsync-api/internal/domain"
	apperrors "github.com/hostelsync/hostelsync-api/pkg/util"
)

func day(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(domain.DateLayout)
	}
	return out
}

func TestGenerateDates(t *testing.T) {
	// 2025-01-05 is a Sunday.
	tests := []struct {
		name  string
		start string
		end   string
		freq  domain.Frequency
		days  []int
		want  []string
	}{
		{"daily inclusive", "2025-01-05", "2025-01-07", domain.FrequencyDaily, nil,
			[]string{"2025-01-05", "2025-01-06", "2025-01-07"}},
		{"weekly mon wed over two weeks", "2025-01-05", "2025-01-18", domain.FrequencyWeekly, []int{1, 3},
			[]string{"2025-01-06", "2025-01-08", "2025-01-13", "2025-01-15"}},
		{"weekdays", "2025-01-10", "2025-01-14", domain.FrequencyWeekdays, nil,
			[]string{"2025-01-10", "2025-01-13", "2025-01-14"}},
		{"weekends", "2025-01-10", "2025-01-14", domain.FrequencyWeekends, nil,
			[]string{"2025-01-11", "2025-01-12"}},
		{"sunday is zero", "2025-01-01", "2025-01-12", domain.FrequencyWeekly, []int{0},
			[]string{"2025-01-05", "2025-01-12"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates, err := GenerateDates(day(tt.start), day(tt.end), tt.freq, tt.days)
			require.NoError(t, err)
			assert.Equal(t, tt.want, formatDates(dates))
		})
	}
}

func TestGenerateDatesRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		freq  domain.Frequency
		days  []int
	}{
		{"end equals start", "2025-01-05", "2025-01-05", domain.FrequencyDaily, nil},
		{"end before start", "2025-01-05", "2025-01-01", domain.FrequencyDaily, nil},
		{"weekly without days", "2025-01-05", "2025-01-10", domain.FrequencyWeekly, nil},
		{"weekly day out of range", "2025-01-05", "2025-01-10", domain.FrequencyWeekly, []int{7}},
		{"unknown frequency", "2025-01-05", "2025-01-10", domain.Frequency("HOURLY"), nil},
		{"too long", "2025-01-01", "2026-01-03", domain.FrequencyDaily, nil},
		{"no matching days", "2025-01-06", "2025-01-10", domain.FrequencyWeekends, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateDates(day(tt.start), day(tt.end), tt.freq, tt.days)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
		})
	}
}
