package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PersonID     uuid.UUID `gorm:"type:uuid;not null;index" json:"person_id"`
	Name         string    `gorm:"size:150;not null" json:"name"`
	FilePath     string    `gorm:"type:text;not null" json:"-"`
	OriginalName string    `gorm:"size:255;not null" json:"original_name"`
	Size         int64     `gorm:"not null" json:"size"`
	MimeType     string    `gorm:"size:100" json:"mime_type"`
	IsPublic     bool      `gorm:"default:false" json:"is_public"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	Person *Person `gorm:"foreignKey:PersonID" json:"person,omitempty"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
