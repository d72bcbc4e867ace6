package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlite "modernc.org/sqlite"

	"checkin-backend/models"
	"checkin-backend/timeutil"
)

const (
	sqliteConstraintCode = 19
	sqliteBusyTimeout    = 5000
)

// SQLite implements Store on an embedded database file, mirroring the
// original single-file checkin.db deployment. An in-memory path serves tests.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		path = "checkin.db"
	}
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	s := &SQLite{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func sqliteDSN(path string) string {
	if !strings.HasPrefix(path, "file:") && !strings.HasPrefix(path, ":memory:") {
		path = "file:" + path
	}
	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout=%d&_pragma=foreign_keys=ON", path, separator, sqliteBusyTimeout)
}

func (s *SQLite) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT,
			email TEXT UNIQUE,
			password TEXT,
			isCheckedIn INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS resources (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS checkin_out (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER,
			resource_id INTEGER,
			action TEXT,
			timestamp TEXT,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (resource_id) REFERENCES resources(id)
		);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) CreateUser(ctx context.Context, name, email, passwordHash string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password) VALUES (?, ?, ?)`,
		name, email, passwordHash)
	if err != nil {
		if isConstraintError(err) {
			return 0, ErrDuplicateEmail
		}
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx,
		`SELECT id, name, email, password, isCheckedIn FROM users WHERE email = ?`, email)
}

func (s *SQLite) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx,
		`SELECT id, name, email, password, isCheckedIn FROM users WHERE id = ?`, id)
}

func (s *SQLite) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.IsCheckedIn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *SQLite) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, password, isCheckedIn FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.IsCheckedIn); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *SQLite) AppendEvent(ctx context.Context, userID int64, action string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE users SET isCheckedIn = ? WHERE id = ?`,
		action == models.ActionCheckin, userID)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, ErrNotFound
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO checkin_out (user_id, action, timestamp) VALUES (?, ?, ?)`,
		userID, action, timeutil.Format(timeutil.Now()))
	if err != nil {
		return 0, err
	}
	eventID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return eventID, nil
}

func (s *SQLite) IsCheckedIn(ctx context.Context, userID int64) (bool, error) {
	var checkedIn bool
	err := s.db.QueryRowContext(ctx,
		`SELECT isCheckedIn FROM users WHERE id = ?`, userID).Scan(&checkedIn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return checkedIn, nil
}

func (s *SQLite) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	query := `SELECT id, user_id, resource_id, action, timestamp FROM checkin_out WHERE 1=1`
	args := []any{}

	if filter.UserID != 0 {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.StartDate != "" {
		query += ` AND timestamp >= ?`
		args = append(args, timeutil.StartOfDay(filter.StartDate))
	}
	if filter.EndDate != "" {
		query += ` AND timestamp <= ?`
		args = append(args, timeutil.EndOfDay(filter.EndDate))
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.UserID, &event.ResourceID, &event.Action, &event.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (s *SQLite) OnlineUsers(ctx context.Context) ([]models.OnlineUser, error) {
	query := `
		SELECT u.id, u.name, u.isCheckedIn,
		       COALESCE((SELECT e.timestamp FROM checkin_out e
		                 WHERE e.user_id = u.id AND e.action = 'checkin'
		                 ORDER BY e.id DESC LIMIT 1), '')
		FROM users u
		WHERE u.isCheckedIn = 1
		ORDER BY u.id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var online []models.OnlineUser
	for rows.Next() {
		var user models.OnlineUser
		if err := rows.Scan(&user.UserID, &user.Name, &user.IsCheckedIn, &user.LastCheckinTime); err != nil {
			return nil, err
		}
		online = append(online, user)
	}
	return online, rows.Err()
}

func (s *SQLite) UpdateEventTimestamp(ctx context.Context, id int64, action, timestamp string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE checkin_out SET timestamp = ? WHERE id = ? AND action = ?`,
		timestamp, id, action)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	for _, stmt := range []string{
		`DELETE FROM checkin_out`,
		`DELETE FROM resources`,
		`DELETE FROM users`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()%256 == sqliteConstraintCode
	}
	return false
}
