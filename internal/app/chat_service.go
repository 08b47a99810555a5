package app

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"lyrnios-backend/internal/model"
	"lyrnios-backend/internal/repository"
)

type ChatService struct {
	sessionRepo  *repository.SessionRepository
	messageRepo  *repository.MessageRepository
	publisher    AsyncMessagePublisher
	historyCache HistoryCache
	log          *zap.Logger
}

type AsyncMessagePublisher interface {
	Publish(ctx context.Context, msg model.PendingMessage) error
}

type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, bool, error)
	SetHistory(ctx context.Context, sessionID string, messages []model.ChatMessage) error
	DeleteHistory(ctx context.Context, sessionID string) error
	MarkDirty(ctx context.Context, sessionID string) error
	IsDirty(ctx context.Context, sessionID string) (bool, error)
}

type CreateSessionInput struct {
	UserID    uint
	SessionID string
	Title     string
}

type AddMessageInput struct {
	UserID    uint
	SessionID string
	Role      string
	Content   *string
	Data      datatypes.JSON
}

type SessionDetail struct {
	model.SessionSummary
	Messages []model.ChatMessage `json:"messages"`
}

// NewChatService accepts nil publisher and history cache; messages are then
// written synchronously and history always comes from the database.
func NewChatService(
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
	publisher AsyncMessagePublisher,
	historyCache HistoryCache,
	log *zap.Logger,
) *ChatService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatService{
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		publisher:    publisher,
		historyCache: historyCache,
		log:          log,
	}
}

func (s *ChatService) CreateSession(ctx context.Context, input CreateSessionInput) (*model.SessionSummary, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}

	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID != "" {
		existing, err := s.sessionRepo.GetByID(ctx, sessionID)
		switch {
		case err == nil:
			if err := AssertOwner(existing, input.UserID); err != nil {
				return nil, err
			}
			count, err := s.sessionRepo.CountMessages(ctx, sessionID)
			if err != nil {
				return nil, err
			}
			summary := existing.Summary(count)
			return &summary, nil
		case !errors.Is(err, ErrSessionNotFound):
			return nil, err
		}
	}

	session := &model.ChatSession{
		ID:     sessionID,
		UserID: input.UserID,
		Title:  strings.TrimSpace(input.Title),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	summary := session.Summary(0)
	return &summary, nil
}

func (s *ChatService) ListSessions(ctx context.Context, userID uint, limit, offset int) ([]model.SessionSummary, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.sessionRepo.ListByUserID(ctx, userID, limit, offset)
}

// GetOwnedSession looks the session up first and checks ownership second, so
// callers can tell a missing session from someone else's.
func (s *ChatService) GetOwnedSession(ctx context.Context, userID uint, sessionID string) (*model.ChatSession, error) {
	if userID == 0 || strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidInput
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := AssertOwner(session, userID); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) GetSession(ctx context.Context, userID uint, sessionID string) (*SessionDetail, error) {
	session, err := s.GetOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	messages, err := s.history(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionDetail{
		SessionSummary: session.Summary(int64(len(messages))),
		Messages:       messages,
	}, nil
}

func (s *ChatService) RenameSession(ctx context.Context, userID uint, sessionID, title string) (*model.SessionSummary, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.GetOwnedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	updated, err := s.sessionRepo.UpdateTitle(ctx, sessionID, title)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrSessionNotFound
	}
	count, err := s.sessionRepo.CountMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	summary := updated.Summary(count)
	return &summary, nil
}

func (s *ChatService) DeleteSession(ctx context.Context, userID uint, sessionID string) error {
	if _, err := s.GetOwnedSession(ctx, userID, sessionID); err != nil {
		return err
	}

	deleted, err := s.sessionRepo.Delete(ctx, sessionID)
	if err != nil {
		return err
	}
	s.dropHistory(ctx, sessionID)
	if !deleted {
		return ErrSessionNotFound
	}
	return nil
}

func (s *ChatService) AddMessage(ctx context.Context, input AddMessageInput) (*model.ChatMessage, error) {
	if _, err := s.GetOwnedSession(ctx, input.UserID, input.SessionID); err != nil {
		return nil, err
	}
	if !model.ValidRole(input.Role) {
		return nil, ErrInvalidRole
	}
	return s.appendMessage(ctx, model.PendingMessage{
		SessionID: input.SessionID,
		Role:      input.Role,
		Content:   input.Content,
		Data:      input.Data,
	})
}

// EnsureSession returns the caller's session, creating it under the given id
// when it does not exist yet.
func (s *ChatService) EnsureSession(ctx context.Context, userID uint, sessionID string) (*model.ChatSession, error) {
	session, err := s.GetOwnedSession(ctx, userID, sessionID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}

	session = &model.ChatSession{ID: sessionID, UserID: userID}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// EnqueueMessage hands the message to the persist queue when one is
// configured and falls back to a direct write otherwise.
func (s *ChatService) EnqueueMessage(ctx context.Context, msg model.PendingMessage) error {
	if !model.ValidRole(msg.Role) {
		return ErrInvalidRole
	}
	if s.publisher != nil {
		if s.historyCache != nil {
			_ = s.historyCache.MarkDirty(ctx, msg.SessionID)
			_ = s.historyCache.DeleteHistory(ctx, msg.SessionID)
		}
		err := s.publisher.Publish(ctx, msg)
		if err == nil {
			return nil
		}
		s.log.Warn("publish message failed, writing directly",
			zap.String("session_id", msg.SessionID),
			zap.Error(err),
		)
	}
	_, err := s.appendMessage(ctx, msg)
	return err
}

func (s *ChatService) appendMessage(ctx context.Context, msg model.PendingMessage) (*model.ChatMessage, error) {
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, msg.SessionID)
		_ = s.historyCache.DeleteHistory(ctx, msg.SessionID)
	}
	message, err := s.messageRepo.Append(ctx, repository.AppendMessageInput{
		SessionID: msg.SessionID,
		Role:      msg.Role,
		Content:   msg.Content,
		Data:      msg.Data,
	})
	if err != nil {
		return nil, err
	}
	s.dropHistory(ctx, msg.SessionID)
	return message, nil
}

func (s *ChatService) history(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, sessionID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, sessionID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	messages, err := s.messageRepo.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, sessionID); dirtyErr == nil && !dirty {
			if err := s.historyCache.SetHistory(ctx, sessionID, messages); err != nil {
				s.log.Warn("cache session history failed", zap.String("session_id", sessionID), zap.Error(err))
			}
		}
	}
	return messages, nil
}

func (s *ChatService) dropHistory(ctx context.Context, sessionID string) {
	if s.historyCache == nil {
		return
	}
	if err := s.historyCache.DeleteHistory(ctx, sessionID); err != nil {
		s.log.Warn("drop session history failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}
