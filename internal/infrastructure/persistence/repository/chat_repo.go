package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/entity"
)

// ChatRepository implements port.ChatRepository. Thread rows are unique per
// (project, type) and participant rows per (thread, user); upserts lean on
// those indexes so concurrent provisioning converges on one row.
type ChatRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *sql.DB, logger *zap.Logger) port.ChatRepository {
	return &ChatRepository{db: db, logger: logger}
}

// UpsertThread creates the thread if absent and returns the surviving row
func (r *ChatRepository) UpsertThread(ctx context.Context, projectID string, threadType entity.ChatThreadType) (*entity.ChatThread, error) {
	query := `
		INSERT INTO chat_threads (id, project_id, type, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (project_id, type) DO NOTHING
	`

	_, err := pick(ctx, r.db).ExecContext(ctx, query, uuid.NewString(), projectID, threadType, time.Now())
	if err != nil {
		r.logger.Error("Failed to upsert chat thread", zap.String("project_id", projectID), zap.Error(err))
		return nil, fmt.Errorf("failed to upsert chat thread: %w", err)
	}

	return r.GetProjectThread(ctx, projectID, threadType)
}

// GetThread retrieves a thread by ID
func (r *ChatRepository) GetThread(ctx context.Context, threadID string) (*entity.ChatThread, error) {
	query := `SELECT id, project_id, type, created_at FROM chat_threads WHERE id = ?`
	return r.scanThread(pick(ctx, r.db).QueryRowContext(ctx, query, threadID))
}

// GetProjectThread retrieves a project's thread of a type
func (r *ChatRepository) GetProjectThread(ctx context.Context, projectID string, threadType entity.ChatThreadType) (*entity.ChatThread, error) {
	query := `SELECT id, project_id, type, created_at FROM chat_threads WHERE project_id = ? AND type = ?`
	return r.scanThread(pick(ctx, r.db).QueryRowContext(ctx, query, projectID, threadType))
}

// ListProjectThreads retrieves a project's threads
func (r *ChatRepository) ListProjectThreads(ctx context.Context, projectID string) ([]*entity.ChatThread, error) {
	query := `SELECT id, project_id, type, created_at FROM chat_threads WHERE project_id = ? ORDER BY created_at`

	rows, err := pick(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat threads: %w", err)
	}
	defer rows.Close()

	var threads []*entity.ChatThread
	for rows.Next() {
		var thread entity.ChatThread
		if err := rows.Scan(&thread.ID, &thread.ProjectID, &thread.Type, &thread.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat thread: %w", err)
		}
		threads = append(threads, &thread)
	}
	return threads, rows.Err()
}

// UpsertParticipant inserts the membership row or, when it exists, clears
// leftAt. Calling it twice leaves exactly one active row.
func (r *ChatRepository) UpsertParticipant(ctx context.Context, threadID, userID string) (*entity.ChatParticipant, error) {
	query := `
		INSERT INTO chat_participants (id, thread_id, user_id, joined_at, left_at)
		VALUES (?, ?, ?, ?, NULL)
		ON CONFLICT (thread_id, user_id) DO UPDATE SET left_at = NULL
	`

	_, err := pick(ctx, r.db).ExecContext(ctx, query, uuid.NewString(), threadID, userID, time.Now())
	if err != nil {
		r.logger.Error("Failed to upsert chat participant", zap.String("thread_id", threadID), zap.Error(err))
		return nil, fmt.Errorf("failed to upsert chat participant: %w", err)
	}

	return r.GetParticipant(ctx, threadID, userID)
}

// GetParticipant retrieves one membership row
func (r *ChatRepository) GetParticipant(ctx context.Context, threadID, userID string) (*entity.ChatParticipant, error) {
	query := `SELECT id, thread_id, user_id, joined_at, left_at FROM chat_participants WHERE thread_id = ? AND user_id = ?`

	var p entity.ChatParticipant
	err := pick(ctx, r.db).QueryRowContext(ctx, query, threadID, userID).Scan(&p.ID, &p.ThreadID, &p.UserID, &p.JoinedAt, &p.LeftAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat participant: %w", err)
	}
	return &p, nil
}

// ListParticipants retrieves every membership row of a thread, including
// departed ones
func (r *ChatRepository) ListParticipants(ctx context.Context, threadID string) ([]*entity.ChatParticipant, error) {
	query := `SELECT id, thread_id, user_id, joined_at, left_at FROM chat_participants WHERE thread_id = ? ORDER BY joined_at`

	rows, err := pick(ctx, r.db).QueryContext(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat participants: %w", err)
	}
	defer rows.Close()

	var participants []*entity.ChatParticipant
	for rows.Next() {
		var p entity.ChatParticipant
		if err := rows.Scan(&p.ID, &p.ThreadID, &p.UserID, &p.JoinedAt, &p.LeftAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat participant: %w", err)
		}
		participants = append(participants, &p)
	}
	return participants, rows.Err()
}

// LeaveThread stamps leftAt on one membership row
func (r *ChatRepository) LeaveThread(ctx context.Context, threadID, userID string, at time.Time) error {
	query := `UPDATE chat_participants SET left_at = ? WHERE thread_id = ? AND user_id = ? AND left_at IS NULL`

	_, err := pick(ctx, r.db).ExecContext(ctx, query, at, threadID, userID)
	if err != nil {
		r.logger.Error("Failed to leave chat thread", zap.String("thread_id", threadID), zap.Error(err))
		return fmt.Errorf("failed to leave chat thread: %w", err)
	}
	return nil
}

// LeaveAllProjectThreads stamps leftAt on the user's membership in every
// thread of the project
func (r *ChatRepository) LeaveAllProjectThreads(ctx context.Context, projectID, userID string, at time.Time) error {
	query := `
		UPDATE chat_participants
		SET left_at = ?
		WHERE user_id = ? AND left_at IS NULL
			AND thread_id IN (SELECT id FROM chat_threads WHERE project_id = ?)
	`

	_, err := pick(ctx, r.db).ExecContext(ctx, query, at, userID, projectID)
	if err != nil {
		r.logger.Error("Failed to leave project chat threads", zap.String("project_id", projectID), zap.Error(err))
		return fmt.Errorf("failed to leave project chat threads: %w", err)
	}
	return nil
}

func (r *ChatRepository) scanThread(row *sql.Row) (*entity.ChatThread, error) {
	var thread entity.ChatThread
	err := row.Scan(&thread.ID, &thread.ProjectID, &thread.Type, &thread.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat thread: %w", err)
	}
	return &thread, nil
}

// Verify interface compliance
var _ port.ChatRepository = (*ChatRepository)(nil)
