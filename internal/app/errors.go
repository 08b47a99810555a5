package app

import (
	"errors"

	"lyrnios-backend/internal/model"
	"lyrnios-backend/internal/repository"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrSessionNotFound     = repository.ErrSessionNotFound
	ErrInvalidRole         = repository.ErrInvalidRole
	ErrForbidden           = errors.New("not authorized")
	ErrAIUnavailable       = errors.New("ai service unavailable")
	ErrInvalidState        = errors.New("invalid oauth state")
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrDemoNotFound        = errors.New("demo not found")
)

// AssertOwner is the second half of every session lookup: a session that
// exists but belongs to someone else is forbidden, not missing.
func AssertOwner(session *model.ChatSession, userID uint) error {
	if session == nil {
		return ErrSessionNotFound
	}
	if session.UserID != userID {
		return ErrForbidden
	}
	return nil
}
