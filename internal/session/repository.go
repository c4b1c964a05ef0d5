package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// timeLayout is fixed-width so lexical order of stored values matches
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Repository defines the interface for session persistence.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	ListSummaries(ctx context.Context) ([]Summary, error)
	ListByUser(ctx context.Context, userID string) ([]Session, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed session repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create appends a session. ID and LoginTime are generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, s *Session) error {
	if s.ID == "" {
		s.ID = "ses-" + uuid.NewString()
	}
	if s.LoginTime.IsZero() {
		s.LoginTime = time.Now()
	}
	s.LoginTime = s.LoginTime.UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, ip_address, device, token, login_time)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.IPAddress, s.Device, s.Token, s.LoginTime.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// ListSummaries returns every session joined with its user, most recent
// login first. Sessions whose user no longer exists get Placeholder values.
func (r *SQLiteRepository) ListSummaries(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, u.name, u.username, u.role, s.ip_address, s.device, s.login_time
		FROM sessions s
		LEFT JOIN users u ON u.id = s.user_id
		ORDER BY s.login_time DESC, s.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var sum Summary
		var name, username, role sql.NullString
		var loginTime string

		if err := rows.Scan(&sum.ID, &name, &username, &role, &sum.IP, &sum.Device, &loginTime); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}

		sum.Name = orPlaceholder(name.String)
		sum.Username = orPlaceholder(username.String)
		sum.Role = orPlaceholder(role.String)
		sum.IP = orPlaceholder(sum.IP)
		sum.Device = orPlaceholder(sum.Device)

		if sum.Timestamp, err = time.Parse(timeLayout, loginTime); err != nil {
			return nil, fmt.Errorf("parsing login time %q: %w", loginTime, err)
		}

		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return summaries, nil
}

// ListByUser returns the sessions of one user, most recent first.
func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, ip_address, device, token, login_time
		FROM sessions WHERE user_id = ?
		ORDER BY login_time DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions for %s: %w", userID, err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var s Session
		var loginTime string
		if err := rows.Scan(&s.ID, &s.UserID, &s.IPAddress, &s.Device, &s.Token, &loginTime); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		if s.LoginTime, err = time.Parse(timeLayout, loginTime); err != nil {
			return nil, fmt.Errorf("parsing login time %q: %w", loginTime, err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
