package model

import (
	"math"
	"time"
)

// Review is a rating bound to exactly one completed booking
// @Description Review information
type Review struct {
	ID         uint      `json:"id" gorm:"primaryKey" example:"1"`
	BookingID  uint      `json:"booking_id" gorm:"uniqueIndex;not null" example:"1"`
	Booking    *Booking  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	UserID     uint      `json:"user_id" gorm:"not null;index" example:"3"`
	User       *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	AdvocateID uint      `json:"advocate_id" gorm:"not null;index" example:"1"`
	Advocate   *Advocate `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Rating     int       `json:"rating" gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5" example:"5"`
	Comment    string    `json:"comment" gorm:"type:text" example:"Very helpful"`
	CreatedAt  time.Time `json:"created_at"`
}

// MinRating and MaxRating bound Review.Rating.
const (
	MinRating = 1
	MaxRating = 5
)

// CreateReviewRequest is the body of a review submission
// @Description Review submission request
type CreateReviewRequest struct {
	BookingID uint   `json:"booking_id" binding:"required" example:"1"`
	Rating    int    `json:"rating" binding:"required" example:"5"`
	Comment   string `json:"comment" example:"Very helpful"`
}

// ReviewWithAuthor is a review joined with the reviewer's name
// @Description Review with reviewer name
type ReviewWithAuthor struct {
	Review
	UserName string `json:"user_name" gorm:"column:user_name" example:"John Client"`
}

// RatingSummary is the aggregate stored on an advocate profile.
type RatingSummary struct {
	Average float64
	Count   int64
}

// Rounded returns the average rounded to two decimals, the precision of
// advocates.rating.
func (s RatingSummary) Rounded() float64 {
	return math.Round(s.Average*100) / 100
}
