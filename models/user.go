package models

// User is a row in the users table. The password hash never leaves the server.
type User struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Email       string `json:"email" db:"email"`
	Password    string `json:"-" db:"password"`
	IsCheckedIn bool   `json:"isCheckedIn" db:"isCheckedIn"`
}

type RegisterRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// OnlineUser is one row of the online-users view: a currently checked-in user
// together with the timestamp of their most recent check-in event.
type OnlineUser struct {
	UserID          int64  `json:"user_id"`
	Name            string `json:"name"`
	IsCheckedIn     bool   `json:"isCheckedIn"`
	LastCheckinTime string `json:"last_checkin_time"`
}
