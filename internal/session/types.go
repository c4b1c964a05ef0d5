package session

import "time"

// Placeholder is shown in summaries for values that are missing, including
// every user field when the referenced account has been deleted.
const Placeholder = "-"

// Session is one successful authentication and its client context.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	IPAddress string    `json:"ip_address"`
	Device    string    `json:"device"`
	Token     string    `json:"-"`
	LoginTime time.Time `json:"login_time"`
}

// Summary is a session enriched with the owning user's details.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IP        string    `json:"ip"`
	Device    string    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
}
