package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lyrnios-backend/internal/model"
)

type AppendMessageInput struct {
	SessionID string
	Role      string
	Content   *string
	Data      datatypes.JSON
}

type MessageRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db, now: utcNow}
}

// Append inserts the message and bumps the session's updated_at in the same
// transaction. The first non-empty user message replaces the default title.
func (r *MessageRepository) Append(ctx context.Context, in AppendMessageInput) (*model.ChatMessage, error) {
	var message model.ChatMessage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session model.ChatSession
		if err := tx.Select("id").Where("id = ?", in.SessionID).First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if !model.ValidRole(in.Role) {
			return ErrInvalidRole
		}

		now := r.now()
		message = model.ChatMessage{
			SessionID: in.SessionID,
			Role:      in.Role,
			Content:   in.Content,
			Data:      in.Data,
			CreatedAt: now,
		}
		if err := tx.Create(&message).Error; err != nil {
			return err
		}

		updates := map[string]any{"updated_at": now}
		if in.Role == model.RoleUser && in.Content != nil && *in.Content != "" {
			updates["title"] = gorm.Expr(
				"CASE WHEN title = ? THEN ? ELSE title END",
				model.DefaultSessionTitle,
				model.DeriveTitle(*in.Content),
			)
		}
		return tx.Model(&model.ChatSession{}).Where("id = ?", in.SessionID).Updates(updates).Error
	})
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrInvalidRole) {
			return nil, err
		}
		return nil, fmt.Errorf("append message failed: %w", err)
	}
	return &message, nil
}

func (r *MessageRepository) ListBySessionID(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	messages := make([]model.ChatMessage, 0)
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}
