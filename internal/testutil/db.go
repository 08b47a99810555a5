// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lyrnios-backend/internal/model"
	"lyrnios-backend/internal/platform/database"
)

// NewTestDB opens a private in-memory SQLite database with foreign keys
// enabled and all tables migrated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := database.New(context.Background(), database.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, database.Migrate(db))
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, googleID string) *model.User {
	t.Helper()

	user := &model.User{
		GoogleID: googleID,
		Email:    googleID + "@example.com",
		Name:     "User " + googleID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
