package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an internal identity resolved from a checkout email.
type User struct {
	ID          string    `gorm:"type:text;primaryKey"`
	Email       string    `gorm:"type:text;not null;uniqueIndex"`
	DisplayName string    `gorm:"column:display_name;not null;default:''"`
	Role        string    `gorm:"column:role;not null;default:'user'"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
