package session

import (
	"context"
	"time"
)

// Recorder persists a Session for each successful login.
type Recorder struct {
	repo Repository
	now  func() time.Time
}

// NewRecorder returns a Recorder writing to repo.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo, now: time.Now}
}

// Record stores a session stamped with the current time. Callers invoke it
// only after the password has verified and the token has been issued.
func (r *Recorder) Record(ctx context.Context, userID, address, device, token string) (*Session, error) {
	s := &Session{
		UserID:    userID,
		IPAddress: address,
		Device:    device,
		Token:     token,
		LoginTime: r.now(),
	}
	if err := r.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}
