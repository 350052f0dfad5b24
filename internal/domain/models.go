package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ==================== ENUMS ====================

type EventStatus string

const (
	EventStatusPending EventStatus = "pending"
	EventStatusSuccess EventStatus = "success"
	EventStatusFailed  EventStatus = "failed"
)

// ==================== JSONB TYPES ====================

type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan JSONB: invalid type")
	}
	return json.Unmarshal(bytes, j)
}

// ==================== ENTITIES ====================

// AlertSnapshot is one row of the historical alert export: the alert counts
// observed for a location on a given day.
type AlertSnapshot struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Date      *time.Time `gorm:"index" json:"date"`
	Location  string     `gorm:"size:255;not null;index" json:"location"`
	Customer  string     `gorm:"size:255" json:"customer"`
	Critical  int        `gorm:"not null;default:0" json:"critical"`
	Immediate int        `gorm:"not null;default:0" json:"immediate"`
	Warning   int        `gorm:"not null;default:0" json:"warning"`
	Total     int        `gorm:"not null;default:0" json:"total"`
}

type TimelineEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Type         string      `gorm:"size:100;not null;index" json:"type"`
	Status       EventStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Message      string      `gorm:"type:text" json:"message"`
	Meta         JSONB       `gorm:"type:jsonb" json:"meta"`
	ResourceID   string      `gorm:"size:64;index" json:"resource_id,omitempty"`
	ResourceType string      `gorm:"size:100;index" json:"resource_type"`
}

type SystemSetting struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Key      string `gorm:"size:255;uniqueIndex;not null" json:"key"`
	Value    string `gorm:"type:text" json:"value"`
	Type     string `gorm:"size:50;default:'string'" json:"type"`
	Category string `gorm:"size:100;index" json:"category"`
}
