package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// PaymentStatus is set at creation and never changed by the API.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Valid reports whether s is one of the four booking states.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// bookingTransitions lists, per state, the states it may move to.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCompleted, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

// CanTransitionTo reports whether a booking in state s may move to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StatesLeadingTo returns every state from which next is reachable in one step.
func StatesLeadingTo(next BookingStatus) []BookingStatus {
	var from []BookingStatus
	for _, s := range []BookingStatus{BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled} {
		if s.CanTransitionTo(next) {
			from = append(from, s)
		}
	}
	return from
}

// Booking is a scheduled engagement between a user and an advocate
// @Description Booking information
type Booking struct {
	ID            uint          `json:"id" gorm:"primaryKey" example:"1"`
	UserID        uint          `json:"user_id" gorm:"not null;index" example:"3"`
	User          *User         `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	AdvocateID    uint          `json:"advocate_id" gorm:"not null;index" example:"1"`
	Advocate      *Advocate     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	ServiceID     *uint         `json:"service_id" gorm:"index" example:"2"`
	Service       *Service      `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	BookingDate   string        `json:"booking_date" gorm:"type:varchar(10);not null" example:"2025-01-15"`
	BookingTime   string        `json:"booking_time" gorm:"type:varchar(8);not null" example:"14:30"`
	ServiceType   ServiceType   `json:"service_type" gorm:"type:varchar(10);not null" example:"online"`
	Status        BookingStatus `json:"status" gorm:"type:varchar(20);not null;default:pending;index" example:"pending"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(20);not null;default:pending" example:"pending"`
	TotalAmount   float64       `json:"total_amount" gorm:"type:decimal(10,2);not null;default:0" example:"500"`
	Notes         string        `json:"notes" gorm:"type:text" example:"First consultation"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CreateBookingRequest is the body of a booking creation
// @Description Booking creation request
type CreateBookingRequest struct {
	AdvocateID  uint        `json:"advocate_id" example:"1"`
	ServiceID   *uint       `json:"service_id" example:"2"`
	BookingDate string      `json:"booking_date" example:"2025-01-15"`
	BookingTime string      `json:"booking_time" example:"14:30"`
	ServiceType ServiceType `json:"service_type" example:"online"`
	Notes       string      `json:"notes" example:"First consultation"`
}

// BookingView is a booking joined with the names a caller needs to render it.
// Columns that do not apply to a given query stay empty.
// @Description Booking with participant details
type BookingView struct {
	Booking
	UserName           string `json:"user_name,omitempty" gorm:"column:user_name" example:"John Client"`
	UserEmail          string `json:"user_email,omitempty" gorm:"column:user_email" example:"john@example.com"`
	UserPhone          string `json:"user_phone,omitempty" gorm:"column:user_phone" example:"9000000001"`
	AdvocateName       string `json:"advocate_name,omitempty" gorm:"column:advocate_name" example:"Jane Doe"`
	AdvocateEmail      string `json:"advocate_email,omitempty" gorm:"column:advocate_email" example:"jane@example.com"`
	AdvocatePhone      string `json:"advocate_phone,omitempty" gorm:"column:advocate_phone" example:"9876543210"`
	Specialization     string `json:"specialization,omitempty" gorm:"column:specialization" example:"Family Law"`
	Location           string `json:"location,omitempty" gorm:"column:location" example:"New Delhi"`
	ServiceTitle       string `json:"service_title,omitempty" gorm:"column:service_title" example:"Divorce consultation"`
	ServiceDescription string `json:"service_description,omitempty" gorm:"column:service_description" example:"One hour consultation"`
}
