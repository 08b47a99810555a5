package database

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lyrnios-backend/internal/model"
)

func TestNewSQLiteAndMigrate(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	db, err := New(context.Background(), DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, Migrate(db))
	for _, table := range []string{"users", "chat_sessions", "chat_messages"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), "oracle", "dsn")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestGormLoggerSkipsNotFoundAndHidesValues(t *testing.T) {
	var buf bytes.Buffer
	dsn := "file:" + filepath.Join(t.TempDir(), "log.db") + "?_pragma=foreign_keys(1)"
	db, err := open(context.Background(), DriverSQLite, dsn, newGormLogger(&buf))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, Migrate(db))
	buf.Reset()

	var session model.ChatSession
	err = db.Where("id = ?", "missing").First(&session).Error
	require.Error(t, err)
	assert.Empty(t, buf.String())

	var rows []map[string]any
	err = db.Raw("SELECT * FROM no_such_table WHERE id = ?", "secret-value").Scan(&rows).Error
	require.Error(t, err)
	assert.Contains(t, buf.String(), "no_such_table")
	assert.NotContains(t, buf.String(), "secret-value")
}
