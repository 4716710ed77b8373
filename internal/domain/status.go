package domain

import (
	"time"

	"github.com/yigit/volunteerhub/internal/app/models"
)

// ComputeStatus derives the lifecycle state of o at instant now. The result is
// never persisted; callers re-derive it on every read. A manual closure wins
// over every date rule.
func ComputeStatus(o *models.Opportunity, now time.Time) models.DerivedStatus {
	if o == nil {
		return models.StatusActive
	}
	if o.IsClosed() {
		return models.StatusArchived
	}

	switch o.DateType {
	case models.DateTypeSingleDay:
		return singleDayStatus(o.StartDate, now)
	case models.DateTypeMultiDay:
		return rangeStatus(o.StartDate, o.EndDate, now)
	case models.DateTypeOngoing:
		if o.StartDate == nil {
			return models.StatusActive
		}
		return rangeStatus(o.StartDate, o.EndDate, now)
	default:
		return models.StatusActive
	}
}

// singleDayStatus compares calendar days only, in now's location
func singleDayStatus(start *time.Time, now time.Time) models.DerivedStatus {
	if start == nil {
		return models.StatusActive
	}
	loc := now.Location()
	startDay := dayOf(*start, loc)
	today := dayOf(now, loc)

	switch {
	case startDay.Equal(today):
		return models.StatusActive
	case startDay.After(today):
		return models.StatusUpcoming
	default:
		return models.StatusArchived
	}
}

// rangeStatus handles multi-day and dated ongoing opportunities. The end instant
// itself is still active; a missing end keeps the opportunity active once started.
func rangeStatus(start, end *time.Time, now time.Time) models.DerivedStatus {
	if start != nil && now.Before(*start) {
		return models.StatusUpcoming
	}
	if end != nil && now.After(*end) {
		return models.StatusArchived
	}
	return models.StatusActive
}

// HasEnded reports whether the opportunity has concluded, the gate for feedback
func HasEnded(o *models.Opportunity, now time.Time) bool {
	return ComputeStatus(o, now) == models.StatusArchived
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
