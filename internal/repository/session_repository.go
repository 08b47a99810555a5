package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lyrnios-backend/internal/model"
)

const messageCountColumn = "(SELECT COUNT(*) FROM chat_messages WHERE chat_messages.session_id = chat_sessions.id) AS message_count"

type SessionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db, now: utcNow}
}

// Create fills in a UUID when the caller did not choose an id and the
// default title when none was given.
func (r *SessionRepository) Create(ctx context.Context, session *model.ChatSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Title == "" {
		session.Title = model.DefaultSessionTitle
	}
	now := r.now()
	session.CreatedAt = now
	session.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("create session failed: %w", err)
	}
	return nil
}

// ListByUserID returns the user's sessions, most recently updated first.
// A non-positive limit returns every session and ignores offset.
func (r *SessionRepository) ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]model.SessionSummary, error) {
	q := r.db.WithContext(ctx).
		Model(&model.ChatSession{}).
		Select("chat_sessions.*, " + messageCountColumn).
		Where("chat_sessions.user_id = ?", userID).
		Order("chat_sessions.updated_at DESC").
		Order("chat_sessions.id ASC")
	if limit > 0 {
		q = q.Limit(limit)
		if offset > 0 {
			q = q.Offset(offset)
		}
	}

	sessions := make([]model.SessionSummary, 0)
	if err := q.Scan(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions failed: %w", err)
	}
	return sessions, nil
}

// GetByID does not check ownership; callers pair it with app.AssertOwner.
func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := r.db.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session failed: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) CountMessages(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ChatMessage{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count messages failed: %w", err)
	}
	return count, nil
}

// UpdateTitle returns nil, nil when the session does not exist.
func (r *SessionRepository) UpdateTitle(ctx context.Context, sessionID, title string) (*model.ChatSession, error) {
	var updated *model.ChatSession
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session model.ChatSession
		if err := tx.Where("id = ?", sessionID).First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		now := r.now()
		if err := tx.Model(&session).Updates(map[string]any{
			"title":      title,
			"updated_at": now,
		}).Error; err != nil {
			return err
		}
		session.Title = title
		session.UpdatedAt = now
		updated = &session
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update session title failed: %w", err)
	}
	return updated, nil
}

// Delete removes the session and its messages in one transaction and reports
// whether a session row existed.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.ChatMessage{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", sessionID).Delete(&model.ChatSession{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete session failed: %w", err)
	}
	return deleted, nil
}
