package model

import "time"

// User represents an account of any role
// @Description User account information
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey" example:"1"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null" example:"Jane Doe"`
	Email     string    `json:"email" gorm:"type:varchar(191);uniqueIndex;not null" example:"jane@example.com"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	Phone     string    `json:"phone" gorm:"type:varchar(20)" example:"9876543210"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;default:user;index" example:"user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session records an issued bearer token so it can be revoked.
type Session struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	User         *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	SessionToken string    `json:"-" gorm:"type:varchar(512);uniqueIndex;not null"`
	ClientIP     string    `json:"client_ip" gorm:"type:varchar(45)"`
	Browser      string    `json:"browser" gorm:"type:varchar(512)"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
}
