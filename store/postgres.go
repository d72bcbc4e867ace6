package store

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"checkin-backend/models"
	"checkin-backend/timeutil"
)

const pgUniqueViolation = "23505"

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	p := &Postgres{pool: pool}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			name TEXT,
			email TEXT UNIQUE,
			password TEXT,
			"isCheckedIn" BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS resources (
			id BIGSERIAL PRIMARY KEY,
			name TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS checkin_out (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT REFERENCES users(id),
			resource_id BIGINT REFERENCES resources(id),
			action TEXT,
			timestamp TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) CreateUser(ctx context.Context, name, email, passwordHash string) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password) VALUES ($1, $2, $3) RETURNING id`,
		name, email, passwordHash,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, ErrDuplicateEmail
		}
		return 0, err
	}
	return id, nil
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return p.getUser(ctx,
		`SELECT id, name, email, password, "isCheckedIn" FROM users WHERE email = $1`, email)
}

func (p *Postgres) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return p.getUser(ctx,
		`SELECT id, name, email, password, "isCheckedIn" FROM users WHERE id = $1`, id)
}

func (p *Postgres) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	err := p.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.IsCheckedIn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (p *Postgres) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, email, password, "isCheckedIn" FROM users ORDER BY id`)
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

func (p *Postgres) AppendEvent(ctx context.Context, userID int64, action string) (int64, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE users SET "isCheckedIn" = $1 WHERE id = $2`,
		action == models.ActionCheckin, userID)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrNotFound
	}

	var eventID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO checkin_out (user_id, action, timestamp) VALUES ($1, $2, $3) RETURNING id`,
		userID, action, timeutil.Format(timeutil.Now()),
	).Scan(&eventID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return eventID, nil
}

func (p *Postgres) IsCheckedIn(ctx context.Context, userID int64) (bool, error) {
	var checkedIn bool
	err := p.pool.QueryRow(ctx,
		`SELECT "isCheckedIn" FROM users WHERE id = $1`, userID).Scan(&checkedIn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return checkedIn, nil
}

func (p *Postgres) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	query := `SELECT id, user_id, resource_id, action, timestamp FROM checkin_out WHERE 1=1`
	args := []any{}

	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		query += ` AND user_id = $` + strconv.Itoa(len(args))
	}
	if filter.StartDate != "" {
		args = append(args, timeutil.StartOfDay(filter.StartDate))
		query += ` AND timestamp >= $` + strconv.Itoa(len(args))
	}
	if filter.EndDate != "" {
		args = append(args, timeutil.EndOfDay(filter.EndDate))
		query += ` AND timestamp <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY id ASC`

	rows, err := p.pool.Query(ctx, query, args...)
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

func (p *Postgres) OnlineUsers(ctx context.Context) ([]models.OnlineUser, error) {
	query := `
		SELECT u.id, u.name, u."isCheckedIn",
		       COALESCE((SELECT e.timestamp FROM checkin_out e
		                 WHERE e.user_id = u.id AND e.action = 'checkin'
		                 ORDER BY e.id DESC LIMIT 1), '')
		FROM users u
		WHERE u."isCheckedIn" = TRUE
		ORDER BY u.id
	`
	rows, err := p.pool.Query(ctx, query)
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

func (p *Postgres) UpdateEventTimestamp(ctx context.Context, id int64, action, timestamp string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE checkin_out SET timestamp = $1 WHERE id = $2 AND action = $3`,
		timestamp, id, action)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Clear(ctx context.Context) error {
	for _, stmt := range []string{
		`DELETE FROM checkin_out`,
		`DELETE FROM resources`,
		`DELETE FROM users`,
	} {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
