package entity

import "time"

// ChatThreadType distinguishes the two eagerly-created project threads from
// ad hoc ones
type ChatThreadType string

const (
	ThreadMain      ChatThreadType = "MAIN"
	ThreadStaffOnly ChatThreadType = "STAFF_ONLY"
	ThreadCustom    ChatThreadType = "CUSTOM"
)

// ChatThread is a per-project conversation channel, unique per
// (project, type) for MAIN and STAFF_ONLY
type ChatThread struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"project_id"`
	Type      ChatThreadType `json:"type"`
	CreatedAt time.Time      `json:"created_at"`
}

// ChatParticipant is a membership row. Departure is a soft leave (LeftAt
// set) so rejoining restores history; the row itself is never deleted.
type ChatParticipant struct {
	ID       string     `json:"id"`
	ThreadID string     `json:"thread_id"`
	UserID   string     `json:"user_id"`
	JoinedAt time.Time  `json:"joined_at"`
	LeftAt   *time.Time `json:"left_at,omitempty"`
}

// Active reports whether the participant is currently a member
func (p *ChatParticipant) Active() bool {
	return p.LeftAt == nil
}
