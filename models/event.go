package models

// Event actions. The action column only ever holds one of these two values.
const (
	ActionCheckin  = "checkin"
	ActionCheckout = "checkout"
)

// Event is an immutable row in the checkin_out table. ID is assigned on insert
// and is the ordering key for session reconstruction; timestamps can collide or
// be administratively edited, insertion order cannot.
type Event struct {
	ID         int64  `json:"id" db:"id"`
	UserID     int64  `json:"user_id" db:"user_id"`
	ResourceID *int64 `json:"resource_id,omitempty" db:"resource_id"`
	Action     string `json:"action" db:"action"`
	Timestamp  string `json:"timestamp" db:"timestamp"`
}

// Session is a derived pairing of one checkin event with the next checkout
// event for the same user. Never persisted; recomputed on every history query.
type Session struct {
	UserID       int64  `json:"user_id"`
	CheckinTime  string `json:"checkin_time"`
	CheckoutTime string `json:"checkout_time"`
	Duration     string `json:"duration"`
}

type CheckRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

type UpdateCheckoutRequest struct {
	CheckoutTime string `json:"checkout_time" binding:"required"`
}

// EventFilter narrows a history query. Zero values mean "no constraint";
// StartDate and EndDate are calendar days widened to full-day coverage.
type EventFilter struct {
	UserID    int64
	StartDate string
	EndDate   string
}
