package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTitle(t *testing.T) {
	exact60 := strings.Repeat("a", 60)
	long75 := strings.Repeat("b", 75)
	multibyte := strings.Repeat("é", 61)

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "short", content: "hello", want: "hello"},
		{name: "exactly 60", content: exact60, want: exact60},
		{name: "75 truncated", content: long75, want: strings.Repeat("b", 60) + "..."},
		{name: "counts runes", content: multibyte, want: strings.Repeat("é", 60) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTitle(tt.content))
		})
	}
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleUser))
	assert.True(t, ValidRole(RoleAssistant))
	assert.False(t, ValidRole("system"))
	assert.False(t, ValidRole(""))
}
