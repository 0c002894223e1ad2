package model

import "time"

// ServiceType describes how a service or booking is delivered.
type ServiceType string

const (
	ServiceOnline  ServiceType = "online"
	ServiceOffline ServiceType = "offline"
	ServiceBoth    ServiceType = "both"
)

// ValidForService reports whether t may be stored on a Service.
func (t ServiceType) ValidForService() bool {
	return t == ServiceOnline || t == ServiceOffline || t == ServiceBoth
}

// ValidForBooking reports whether t may be stored on a Booking; a booking
// happens either online or offline, never both.
func (t ServiceType) ValidForBooking() bool {
	return t == ServiceOnline || t == ServiceOffline
}

// Service is a priced, timed offering published by an advocate
// @Description Service information
type Service struct {
	ID              uint        `json:"id" gorm:"primaryKey" example:"1"`
	AdvocateID      uint        `json:"advocate_id" gorm:"not null;index" example:"1"`
	Advocate        *Advocate   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Title           string      `json:"title" gorm:"type:varchar(255);not null" example:"Divorce consultation"`
	Description     string      `json:"description" gorm:"type:text" example:"One hour consultation"`
	ServiceType     ServiceType `json:"service_type" gorm:"type:varchar(10);not null;default:both" example:"online"`
	Category        string      `json:"category" gorm:"type:varchar(100)" example:"Family"`
	Price           float64     `json:"price" gorm:"type:decimal(10,2);not null" example:"1500"`
	DurationMinutes int         `json:"duration_minutes" gorm:"not null" example:"60"`
	IsActive        bool        `json:"is_active" gorm:"not null;default:true" example:"true"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// ServiceRequest is the body for creating or replacing a service. Pointer
// fields distinguish "absent" from a zero value.
// @Description Service create/update request
type ServiceRequest struct {
	Title           string      `json:"title" example:"Divorce consultation"`
	Description     string      `json:"description" example:"One hour consultation"`
	ServiceType     ServiceType `json:"service_type" example:"online"`
	Category        string      `json:"category" example:"Family"`
	Price           *float64    `json:"price" example:"1500"`
	DurationMinutes *int        `json:"duration_minutes" example:"60"`
	IsActive        *bool       `json:"is_active" example:"true"`
}
