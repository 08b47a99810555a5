package model

import "time"

// User is created on the first successful Google login. Only the profile
// fields are refreshed afterwards.
type User struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	GoogleID  string        `gorm:"size:64;not null;uniqueIndex" json:"google_id"`
	Email     string        `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name      string        `gorm:"size:255" json:"name"`
	Picture   string        `gorm:"size:1024" json:"picture"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Sessions  []ChatSession `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
