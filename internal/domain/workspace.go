package domain

import "time"

// ActiveUser is a participant currently present in a workspace
type ActiveUser struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"fullName"`
	Role         UserRole  `json:"role"`
	JoinedAt     time.Time `json:"joinedAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// WorkspaceState is a snapshot of the live session for one request
type WorkspaceState struct {
	RequestID    int64        `json:"requestId"`
	ActiveUsers  []ActiveUser `json:"activeUsers"`
	LastActivity time.Time    `json:"lastActivity"`
}

// WorkspaceSnapshot is the full context sent once to a joining participant
type WorkspaceSnapshot struct {
	Request     *Request     `json:"request"`
	Steps       []Step       `json:"steps"`
	Messages    []Message    `json:"messages"`
	ActiveUsers []ActiveUser `json:"activeUsers"`
}
