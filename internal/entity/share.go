package entity

import (
	"time"

	"github.com/google/uuid"
)

// PersonShare grants the shared-with user the same access as the owner
// for a single person record. One row per (person, shared_with) pair.
type PersonShare struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PersonID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_person_shared_with" json:"person_id"`
	SharedWithID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_person_shared_with" json:"shared_with_id"`
	SharedByID   uuid.UUID `gorm:"type:uuid;not null" json:"shared_by_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	Person     *Person `gorm:"foreignKey:PersonID" json:"person,omitempty"`
	SharedWith *User   `gorm:"foreignKey:SharedWithID" json:"shared_with,omitempty"`
	SharedBy   *User   `gorm:"foreignKey:SharedByID" json:"shared_by,omitempty"`
}

type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_person_fav" json:"user_id"`
	PersonID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_person_fav" json:"person_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Person *Person `gorm:"foreignKey:PersonID" json:"person,omitempty"`
}
