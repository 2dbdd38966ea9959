package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationTypeBirthday = "birthday"
	NotificationTypeAdmin    = "admin"
)

type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Type      string     `gorm:"size:50;not null" json:"type"`
	Title     string     `gorm:"size:150;not null" json:"title"`
	Message   string     `gorm:"type:text" json:"message"`
	PersonID  *uuid.UUID `gorm:"type:uuid" json:"person_id,omitempty"`
	IsRead    bool       `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Person *Person `gorm:"foreignKey:PersonID" json:"person,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

type DeviceToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Token     string    `gorm:"size:255;uniqueIndex;not null" json:"-"`
	Platform  string    `gorm:"size:20" json:"platform"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
