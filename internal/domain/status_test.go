package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/volunteerhub/internal/app/models"
)

func at(year int, month time.Month, day, hour int) *time.Time {
	t := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func TestComputeStatus(t *testing.T) {
	now := *at(2025, time.June, 15, 12)

	tests := []struct {
		name string
		opp  *models.Opportunity
		want models.DerivedStatus
	}{
		{"nil", nil, models.StatusActive},
		{"single day today", &models.Opportunity{DateType: models.DateTypeSingleDay, StartDate: at(2025, time.June, 15, 0)}, models.StatusActive},
		{"single day late today", &models.Opportunity{DateType: models.DateTypeSingleDay, StartDate: at(2025, time.June, 15, 23)}, models.StatusActive},
		{"single day tomorrow", &models.Opportunity{DateType: models.DateTypeSingleDay, StartDate: at(2025, time.June, 16, 0)}, models.StatusUpcoming},
		{"single day yesterday", &models.Opportunity{DateType: models.DateTypeSingleDay, StartDate: at(2025, time.June, 14, 0)}, models.StatusArchived},
		{"single day without date", &models.Opportunity{DateType: models.DateTypeSingleDay}, models.StatusActive},
		{"multi day not started", &models.Opportunity{DateType: models.DateTypeMultiDay, StartDate: at(2025, time.June, 15, 13), EndDate: at(2025, time.June, 20, 0)}, models.StatusUpcoming},
		{"multi day running", &models.Opportunity{DateType: models.DateTypeMultiDay, StartDate: at(2025, time.June, 10, 0), EndDate: at(2025, time.June, 20, 0)}, models.StatusActive},
		{"multi day ends now", &models.Opportunity{DateType: models.DateTypeMultiDay, StartDate: at(2025, time.June, 10, 0), EndDate: &now}, models.StatusActive},
		{"multi day over", &models.Opportunity{DateType: models.DateTypeMultiDay, StartDate: at(2025, time.June, 10, 0), EndDate: at(2025, time.June, 15, 11)}, models.StatusArchived},
		{"multi day without end", &models.Opportunity{DateType: models.DateTypeMultiDay, StartDate: at(2025, time.June, 10, 0)}, models.StatusActive},
		{"ongoing without dates", &models.Opportunity{DateType: models.DateTypeOngoing}, models.StatusActive},
		{"ongoing future start", &models.Opportunity{DateType: models.DateTypeOngoing, StartDate: at(2025, time.July, 1, 0)}, models.StatusUpcoming},
		{"ongoing past end", &models.Opportunity{DateType: models.DateTypeOngoing, StartDate: at(2025, time.January, 1, 0), EndDate: at(2025, time.May, 1, 0)}, models.StatusArchived},
		{"closed overrides dates", &models.Opportunity{DateType: models.DateTypeSingleDay, StartDate: at(2025, time.July, 1, 0), Status: models.ManualStatusClosed}, models.StatusArchived},
		{"unknown date type", &models.Opportunity{DateType: "weekly"}, models.StatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStatus(tt.opp, now))
		})
	}
}

func TestComputeStatus_SingleDayUsesNowLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 2025-06-15 20:00 UTC is already 2025-06-16 in Tokyo
	start := time.Date(2025, time.June, 15, 20, 0, 0, 0, time.UTC)
	opp := &models.Opportunity{DateType: models.DateTypeSingleDay, StartDate: &start}

	now := time.Date(2025, time.June, 16, 8, 0, 0, 0, tokyo)
	assert.Equal(t, models.StatusActive, ComputeStatus(opp, now))
	assert.Equal(t, models.StatusArchived, ComputeStatus(opp, now.Add(24*time.Hour)))
}

func TestHasEnded(t *testing.T) {
	now := *at(2025, time.June, 15, 12)
	assert.True(t, HasEnded(&models.Opportunity{DateType: models.DateTypeSingleDay, StartDate: at(2025, time.June, 1, 0)}, now))
	assert.False(t, HasEnded(&models.Opportunity{DateType: models.DateTypeOngoing}, now))
}
