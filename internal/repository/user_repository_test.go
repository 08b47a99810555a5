package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyrnios-backend/internal/model"
	"lyrnios-backend/internal/testutil"
)

func TestUserRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	missing, err := users.GetByGoogleID(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	user := &model.User{GoogleID: "g-1", Email: "a@example.com", Name: "A"}
	require.NoError(t, users.Create(ctx, user))
	require.NotZero(t, user.ID)

	user.Email = "b@example.com"
	user.Name = "B"
	user.Picture = "https://example.com/b.png"
	require.NoError(t, users.UpdateProfile(ctx, user))

	loaded, err := users.GetByGoogleID(ctx, "g-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, user.ID, loaded.ID)
	assert.Equal(t, "b@example.com", loaded.Email)
	assert.Equal(t, "B", loaded.Name)
	assert.Equal(t, "https://example.com/b.png", loaded.Picture)

	byID, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "g-1", byID.GoogleID)

	none, err := users.GetByID(ctx, 12345)
	require.NoError(t, err)
	assert.Nil(t, none)
}
