package model

import "time"

// Advocate is the professional profile attached to a user with role advocate
// @Description Advocate profile information
type Advocate struct {
	ID               uint      `json:"id" gorm:"primaryKey" example:"1"`
	UserID           uint      `json:"user_id" gorm:"uniqueIndex;not null" example:"2"`
	User             *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Specialization   string    `json:"specialization" gorm:"type:varchar(255)" example:"Family Law"`
	ExperienceYears  int       `json:"experience_years" example:"8"`
	BarCouncilNumber *string   `json:"bar_council_number" gorm:"type:varchar(100);uniqueIndex" example:"D/1234/2015"`
	LicenseNumber    string    `json:"license_number" gorm:"type:varchar(100)" example:"LIC-5521"`
	Location         string    `json:"location" gorm:"type:varchar(255)" example:"New Delhi"`
	Bio              string    `json:"bio" gorm:"type:text" example:"Practising family law for eight years"`
	HourlyRate       float64   `json:"hourly_rate" gorm:"type:decimal(10,2);not null;default:0" example:"500"`
	Rating           float64   `json:"rating" gorm:"type:decimal(3,2);not null;default:0" example:"4.5"`
	TotalReviews     int       `json:"total_reviews" gorm:"not null;default:0" example:"12"`
	IsVerified       bool      `json:"is_verified" gorm:"not null;default:false" example:"true"`
	IsAvailable      bool      `json:"is_available" gorm:"not null;default:true" example:"true"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AdvocateProfileRequest carries the editable profile attributes
// @Description Advocate profile update request
type AdvocateProfileRequest struct {
	Specialization   string  `json:"specialization" example:"Family Law"`
	ExperienceYears  int     `json:"experience_years" binding:"gte=0" example:"8"`
	BarCouncilNumber string  `json:"bar_council_number" example:"D/1234/2015"`
	LicenseNumber    string  `json:"license_number" example:"LIC-5521"`
	Location         string  `json:"location" example:"New Delhi"`
	Bio              string  `json:"bio" example:"Practising family law for eight years"`
	HourlyRate       float64 `json:"hourly_rate" binding:"gte=0" example:"500"`
}

// AdvocateListing is an advocate row joined with its owner's contact details
// @Description Advocate with user details
type AdvocateListing struct {
	Advocate
	Name  string `json:"name" gorm:"column:name" example:"Jane Doe"`
	Email string `json:"email" gorm:"column:email" example:"jane@example.com"`
	Phone string `json:"phone" gorm:"column:phone" example:"9876543210"`
}

// AdvocateDetail is the public advocate page
// @Description Advocate detail with services and recent reviews
type AdvocateDetail struct {
	AdvocateListing
	Services []Service          `json:"services"`
	Reviews  []ReviewWithAuthor `json:"reviews"`
}
