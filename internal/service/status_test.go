package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestDeriveStatus(t *testing.T) {
	today := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		deposit   *time.Time
		completed bool
		want      Status
	}{
		{name: "completed wins over any date", deposit: date(2025, time.January, 1), completed: true, want: StatusCompleted},
		{name: "completed without date", completed: true, want: StatusCompleted},
		{name: "no deposit date", want: StatusOnTrack},
		{name: "ten days left", deposit: date(2025, time.January, 20), want: StatusOnTrack},
		{name: "four days left", deposit: date(2025, time.January, 14), want: StatusOnTrack},
		{name: "three days left", deposit: date(2025, time.January, 13), want: StatusAtRisk},
		{name: "due today", deposit: date(2025, time.January, 10), want: StatusAtRisk},
		{name: "overdue", deposit: date(2025, time.January, 5), want: StatusAtRisk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.deposit, tt.completed, today))
		})
	}
}

func TestDeriveStatus_IgnoresTimeOfDay(t *testing.T) {
	lateEvening := time.Date(2025, time.January, 10, 23, 59, 0, 0, time.UTC)
	earlyMorning := time.Date(2025, time.January, 10, 0, 1, 0, 0, time.UTC)
	deposit := time.Date(2025, time.January, 14, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, StatusOnTrack, DeriveStatus(&deposit, false, lateEvening))
	assert.Equal(t, StatusOnTrack, DeriveStatus(&deposit, false, earlyMorning))
}

func TestDaysUntil_AcrossZones(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 00:30 in Paris is still the previous day in UTC; the local calendar day counts.
	today := time.Date(2025, time.January, 10, 0, 30, 0, 0, paris)
	assert.Equal(t, 4, DaysUntil(*date(2025, time.January, 14), today))
	assert.Equal(t, 0, DaysUntil(*date(2025, time.January, 10), today))
	assert.Equal(t, -9, DaysUntil(*date(2025, time.January, 1), today))
}

func TestDescribeStatus(t *testing.T) {
	today := time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)

	info := DescribeStatus(date(2025, time.January, 12), false, today)
	assert.Equal(t, StatusAtRisk, info.Status)
	assert.Equal(t, "À risque", info.Label)
	if assert.NotNil(t, info.DaysRemaining) {
		assert.Equal(t, 2, *info.DaysRemaining)
	}

	info = DescribeStatus(nil, false, today)
	assert.Equal(t, "En cours", info.Label)
	assert.Nil(t, info.DaysRemaining)

	info = DescribeStatus(date(2025, time.January, 12), true, today)
	assert.Equal(t, "Terminé", info.Label)
	assert.Nil(t, info.DaysRemaining)
}
