package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// PhoneList stores a person's phone numbers as a JSON array in a text column.
type PhoneList []string

func (p PhoneList) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *PhoneList) Scan(value interface{}) error {
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
		return fmt.Errorf("unsupported phone list column type %T", value)
	}
}

type Person struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	NRIC        string    `gorm:"size:20;uniqueIndex;not null" json:"nric"`
	DateOfBirth time.Time `gorm:"not null" json:"date_of_birth"`
	Gender      string    `gorm:"size:10;not null" json:"gender"`
	BloodType   *string   `gorm:"size:5" json:"blood_type,omitempty"`
	Occupation  *string   `gorm:"size:100" json:"occupation,omitempty"`
	Address     *string   `gorm:"type:text" json:"address,omitempty"`
	Phones      PhoneList `gorm:"type:text" json:"phones"`
	Email       *string   `gorm:"size:100" json:"email,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Owner     *User         `gorm:"foreignKey:UserID" json:"owner,omitempty"`
	Documents []Document    `gorm:"foreignKey:PersonID" json:"documents,omitempty"`
	Shares    []PersonShare `gorm:"foreignKey:PersonID" json:"shares,omitempty"`
}

func (p *Person) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
