package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Properties is a free-form JSON bag attached to an activity log row.
type Properties map[string]interface{}

func (p Properties) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *Properties) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported properties column type %T", value)
	}
}

// ActivityLog is append-only. Rows are never updated or deleted by
// application flows.
type ActivityLog struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action      string     `gorm:"size:100;not null;index" json:"action"`
	Description string     `gorm:"type:text" json:"description"`
	SubjectType *string    `gorm:"size:100" json:"subject_type,omitempty"`
	SubjectID   *string    `gorm:"size:100" json:"subject_id,omitempty"`
	Properties  Properties `gorm:"type:text" json:"properties,omitempty"`
	IP          string     `gorm:"size:45" json:"ip"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
