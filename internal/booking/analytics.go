package booking

import (
	"time"

	"github.com/visitamhara/tourapp/internal/models"
)

// SpendingWindow selects how far back a spending summary looks.
type SpendingWindow string

const (
	WindowWeek  SpendingWindow = "week"
	WindowMonth SpendingWindow = "month"
	WindowYear  SpendingWindow = "year"
)

// SpendingSummary totals what the user paid for bookings created inside
// the window. Cancelled bookings are excluded.
func SpendingSummary(records []models.BookingRecord, window SpendingWindow, now time.Time) float64 {
	var since time.Time
	switch window {
	case WindowWeek:
		since = now.AddDate(0, 0, -7)
	case WindowMonth:
		since = now.AddDate(0, -1, 0)
	case WindowYear:
		since = now.AddDate(-1, 0, 0)
	default:
		return 0
	}

	var total float64
	for _, record := range records {
		if record.Status == models.BookingCancelled {
			continue
		}
		if record.CreatedAt.Before(since) || record.CreatedAt.After(now) {
			continue
		}
		total += record.TotalPrice
	}
	return total
}

// StatusCounts tallies records per derived display status, for the history
// screen's tab badges.
func StatusCounts(records []models.BookingRecord, now time.Time) map[models.DisplayStatus]int {
	counts := make(map[models.DisplayStatus]int)
	for _, record := range records {
		counts[record.DeriveDisplayStatus(now)]++
	}
	return counts
}
