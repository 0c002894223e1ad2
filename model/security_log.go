package model

import (
	"time"

	"gorm.io/datatypes"
)

// SecurityLog represents a persisted security or audit event
type SecurityLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	EventType string    `json:"event_type" gorm:"column:event_type;type:varchar(64);index"`
	UserID    string    `json:"user_id" gorm:"column:user_id;type:varchar(64);index"`
	Email     string    `json:"email" gorm:"column:email;type:varchar(191)"`
	IP        string    `json:"ip" gorm:"column:ip;type:varchar(45)"`
	// Location is "City/Country" when GeoIP resolves the address.
	Location  string         `json:"location" gorm:"column:location;type:varchar(255)"`
	UserAgent string         `json:"user_agent" gorm:"column:user_agent;type:varchar(512)"`
	Message   string         `json:"message" gorm:"column:message;type:text"`
	Details   datatypes.JSON `json:"details" gorm:"column:details;type:json"`
}
