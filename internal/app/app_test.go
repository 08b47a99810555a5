package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lyrnios-backend/internal/cache"
	"lyrnios-backend/internal/model"
	"lyrnios-backend/internal/repository"
	"lyrnios-backend/internal/testutil"
)

type fakePublisher struct {
	mu   sync.Mutex
	msgs []model.PendingMessage
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, msg model.PendingMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

type testEnv struct {
	db       *gorm.DB
	sessions *repository.SessionRepository
	messages *repository.MessageRepository
	history  *cache.HistoryCache
	redis    *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	s := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &testEnv{
		db:       db,
		sessions: repository.NewSessionRepository(db),
		messages: repository.NewMessageRepository(db),
		history:  cache.NewHistoryCache(client, time.Minute, 5*time.Second),
		redis:    s,
	}
}

func (e *testEnv) chatService(publisher AsyncMessagePublisher) *ChatService {
	return NewChatService(e.sessions, e.messages, publisher, e.history, nil)
}

var errPublish = errors.New("broker down")

func strPtr(s string) *string {
	return &s
}

func requireUser(t *testing.T, env *testEnv, googleID string) *model.User {
	t.Helper()
	user := testutil.CreateUser(t, env.db, googleID)
	require.NotZero(t, user.ID)
	return user
}
