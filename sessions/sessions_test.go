package sessions

import (
	"testing"
	"time"

	"checkin-backend/models"
)

func event(id, userID int64, action, timestamp string) models.Event {
	return models.Event{ID: id, UserID: userID, Action: action, Timestamp: timestamp}
}

func TestReconstructSimplePair(t *testing.T) {
	events := []models.Event{
		event(1, 1, models.ActionCheckin, "2025-03-10 10:00:00"),
		event(2, 1, models.ActionCheckout, "2025-03-10 10:45:00"),
	}

	sessions := Reconstruct(events)
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	session := sessions[0]
	if session.UserID != 1 {
		t.Errorf("unexpected user: %d", session.UserID)
	}
	if session.CheckinTime != "2025-03-10 10:00:00" || session.CheckoutTime != "2025-03-10 10:45:00" {
		t.Errorf("unexpected interval: %s - %s", session.CheckinTime, session.CheckoutTime)
	}
	if session.Duration != "45 min" {
		t.Errorf("expected duration %q, got %q", "45 min", session.Duration)
	}
}

func TestReconstructHourRendering(t *testing.T) {
	events := []models.Event{
		event(1, 1, models.ActionCheckin, "2025-03-10 10:00:00"),
		event(2, 1, models.ActionCheckout, "2025-03-10 13:30:00"),
	}

	sessions := Reconstruct(events)
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].Duration != "3.50 hr" {
		t.Errorf("expected duration %q, got %q", "3.50 hr", sessions[0].Duration)
	}
}

func TestReconstructLastCheckinWins(t *testing.T) {
	events := []models.Event{
		event(1, 1, models.ActionCheckin, "2025-03-10 08:00:00"),
		event(2, 1, models.ActionCheckin, "2025-03-10 09:00:00"),
		event(3, 1, models.ActionCheckout, "2025-03-10 09:30:00"),
	}

	sessions := Reconstruct(events)
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].CheckinTime != "2025-03-10 09:00:00" {
		t.Errorf("expected the later checkin to pair, got %s", sessions[0].CheckinTime)
	}
	if sessions[0].Duration != "30 min" {
		t.Errorf("unexpected duration: %s", sessions[0].Duration)
	}
}

func TestReconstructOrphanCheckoutDropped(t *testing.T) {
	events := []models.Event{
		event(1, 1, models.ActionCheckout, "2025-03-10 09:30:00"),
	}

	sessions := Reconstruct(events)
	if len(sessions) != 0 {
		t.Fatalf("expected no sessions, got %d", len(sessions))
	}
}

func TestReconstructUsersIndependent(t *testing.T) {
	// Identical timestamps across users must not interfere with pairing.
	events := []models.Event{
		event(1, 1, models.ActionCheckin, "2025-03-10 10:00:00"),
		event(2, 2, models.ActionCheckin, "2025-03-10 10:00:00"),
		event(3, 2, models.ActionCheckout, "2025-03-10 11:00:00"),
		event(4, 1, models.ActionCheckout, "2025-03-10 12:00:00"),
	}

	sessions := Reconstruct(events)
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	// Output order follows checkout processing order.
	if sessions[0].UserID != 2 || sessions[1].UserID != 1 {
		t.Errorf("unexpected session order: %+v", sessions)
	}
	if sessions[0].Duration != "1.00 hr" {
		t.Errorf("unexpected duration for user 2: %s", sessions[0].Duration)
	}
	if sessions[1].Duration != "2.00 hr" {
		t.Errorf("unexpected duration for user 1: %s", sessions[1].Duration)
	}
}

func TestReconstructSessionCountBound(t *testing.T) {
	events := []models.Event{
		event(1, 1, models.ActionCheckin, "2025-03-10 08:00:00"),
		event(2, 1, models.ActionCheckout, "2025-03-10 08:10:00"),
		event(3, 1, models.ActionCheckout, "2025-03-10 08:20:00"),
		event(4, 2, models.ActionCheckin, "2025-03-10 08:30:00"),
		event(5, 2, models.ActionCheckin, "2025-03-10 08:40:00"),
		event(6, 2, models.ActionCheckout, "2025-03-10 08:50:00"),
		event(7, 3, models.ActionCheckout, "2025-03-10 08:55:00"),
	}

	checkouts := 0
	checkoutTimes := map[string]bool{}
	for _, e := range events {
		if e.Action == models.ActionCheckout {
			checkouts++
			checkoutTimes[e.Timestamp] = true
		}
	}

	sessions := Reconstruct(events)
	if len(sessions) > checkouts {
		t.Fatalf("emitted %d sessions from %d checkouts", len(sessions), checkouts)
	}
	for _, session := range sessions {
		if !checkoutTimes[session.CheckoutTime] {
			t.Errorf("session checkout_time %s does not match any checkout event", session.CheckoutTime)
		}
	}
}

func TestReconstructEmptyLog(t *testing.T) {
	sessions := Reconstruct(nil)
	if sessions == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(sessions) != 0 {
		t.Fatalf("expected no sessions, got %d", len(sessions))
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		want    string
	}{
		{0, "0 min"},
		{45 * time.Minute, "45 min"},
		{59*time.Minute + 59*time.Second, "59 min"},
		{60 * time.Minute, "1.00 hr"},
		{90 * time.Minute, "1.50 hr"},
		{210 * time.Minute, "3.50 hr"},
		{25 * time.Hour, "25.00 hr"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.elapsed); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.elapsed, got, tc.want)
		}
	}
}
