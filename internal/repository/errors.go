package repository

import (
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidRole     = errors.New("invalid message role")
)

func utcNow() time.Time {
	return time.Now().UTC()
}
