// Package sessions turns the flat check-in/out event log into paired sessions.
package sessions

import (
	"fmt"
	"time"

	"checkin-backend/models"
	"checkin-backend/timeutil"
)

// Reconstruct replays events, ordered by insertion id ascending, into matched
// checkin/checkout sessions. At most one pending check-in is tracked per user:
// a repeated checkin overwrites the previous one (last check-in wins, earlier
// ones produce no session), and a checkout with no pending checkin is dropped.
// Both are deliberate, not errors. Sessions come out in the order their
// checkout events were processed.
func Reconstruct(events []models.Event) []models.Session {
	pending := make(map[int64]models.Event)
	sessions := []models.Session{}

	for _, event := range events {
		switch event.Action {
		case models.ActionCheckin:
			pending[event.UserID] = event
		case models.ActionCheckout:
			checkin, ok := pending[event.UserID]
			if !ok {
				continue
			}
			checkinTime, err1 := timeutil.Parse(checkin.Timestamp)
			checkoutTime, err2 := timeutil.Parse(event.Timestamp)
			if err1 != nil || err2 != nil {
				continue
			}
			sessions = append(sessions, models.Session{
				UserID:       event.UserID,
				CheckinTime:  checkin.Timestamp,
				CheckoutTime: event.Timestamp,
				Duration:     FormatDuration(checkoutTime.Sub(checkinTime)),
			})
			delete(pending, event.UserID)
		}
	}

	return sessions
}

// FormatDuration renders an elapsed span as whole minutes below an hour
// ("45 min"), otherwise as hours with two decimals ("3.50 hr").
func FormatDuration(d time.Duration) string {
	minutes := d.Milliseconds() / (1000 * 60)
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%.2f hr", float64(minutes)/60)
}
