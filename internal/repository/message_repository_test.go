package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyrnios-backend/internal/model"
	"lyrnios-backend/internal/testutil"
)

func TestAppendAutoTitlesFirstUserMessage(t *testing.T) {
	db, sessions, messages := newRepos(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "g1")

	session := &model.ChatSession{UserID: user.ID}
	require.NoError(t, sessions.Create(ctx, session))

	content := strings.Repeat("x", 75)
	message, err := messages.Append(ctx, AppendMessageInput{SessionID: session.ID, Role: model.RoleUser, Content: &content})
	require.NoError(t, err)
	assert.NotZero(t, message.ID)

	loaded, err := sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 60)+"...", loaded.Title)
	assert.False(t, loaded.UpdatedAt.Before(message.CreatedAt))

	_, err = messages.Append(ctx, AppendMessageInput{SessionID: session.ID, Role: model.RoleUser, Content: ptr("second")})
	require.NoError(t, err)
	loaded, err = sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 60)+"...", loaded.Title)
}

func TestAppendRetitlesAfterRenameToDefault(t *testing.T) {
	db, sessions, messages := newRepos(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "g1")

	session := &model.ChatSession{UserID: user.ID}
	require.NoError(t, sessions.Create(ctx, session))

	_, err := messages.Append(ctx, AppendMessageInput{SessionID: session.ID, Role: model.RoleUser, Content: ptr("first")})
	require.NoError(t, err)
	loaded, err := sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", loaded.Title)

	renamed, err := sessions.UpdateTitle(ctx, session.ID, model.DefaultSessionTitle)
	require.NoError(t, err)
	require.NotNil(t, renamed)
	assert.Equal(t, model.DefaultSessionTitle, renamed.Title)

	_, err = messages.Append(ctx, AppendMessageInput{SessionID: session.ID, Role: model.RoleUser, Content: ptr("second")})
	require.NoError(t, err)
	loaded, err = sessions.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", loaded.Title)
}

func TestAppendTitleRules(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		role      string
		content   *string
		wantTitle string
	}{
		{name: "short user content", title: "", role: model.RoleUser, content: ptr("hello"), wantTitle: "hello"},
		{name: "assistant does not title", title: "", role: model.RoleAssistant, content: ptr("hello"), wantTitle: model.DefaultSessionTitle},
		{name: "empty content does not title", title: "", role: model.RoleUser, content: ptr(""), wantTitle: model.DefaultSessionTitle},
		{name: "nil content does not title", title: "", role: model.RoleUser, content: nil, wantTitle: model.DefaultSessionTitle},
		{name: "custom title kept", title: "Mine", role: model.RoleUser, content: ptr("hello"), wantTitle: "Mine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, sessions, messages := newRepos(t)
			ctx := context.Background()
			user := testutil.CreateUser(t, db, "g1")

			session := &model.ChatSession{UserID: user.ID, Title: tt.title}
			require.NoError(t, sessions.Create(ctx, session))

			_, err := messages.Append(ctx, AppendMessageInput{SessionID: session.ID, Role: tt.role, Content: tt.content})
			require.NoError(t, err)

			loaded, err := sessions.GetByID(ctx, session.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, loaded.Title)
		})
	}
}

func TestAppendErrors(t *testing.T) {
	db, sessions, messages := newRepos(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "g1")

	_, err := messages.Append(ctx, AppendMessageInput{SessionID: "missing", Role: model.RoleUser, Content: ptr("hi")})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	session := &model.ChatSession{UserID: user.ID}
	require.NoError(t, sessions.Create(ctx, session))

	_, err = messages.Append(ctx, AppendMessageInput{SessionID: session.ID, Role: "system", Content: ptr("hi")})
	assert.ErrorIs(t, err, ErrInvalidRole)

	list, err := messages.ListBySessionID(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListBySessionIDOrder(t *testing.T) {
	db, sessions, messages := newRepos(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "g1")

	session := &model.ChatSession{UserID: user.ID}
	require.NoError(t, sessions.Create(ctx, session))

	for _, content := range []string{"one", "two", "three"} {
		_, err := messages.Append(ctx, AppendMessageInput{SessionID: session.ID, Role: model.RoleUser, Content: ptr(content)})
		require.NoError(t, err)
	}
	_, err := messages.Append(ctx, AppendMessageInput{SessionID: session.ID, Role: model.RoleAssistant, Data: []byte(`{"answer":"four"}`)})
	require.NoError(t, err)

	list, err := messages.ListBySessionID(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "one", *list[0].Content)
	assert.Equal(t, "two", *list[1].Content)
	assert.Equal(t, "three", *list[2].Content)
	assert.Nil(t, list[3].Content)
	assert.JSONEq(t, `{"answer":"four"}`, string(list[3].Data))
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.Before(list[i-1].CreatedAt))
	}
}
