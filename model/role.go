package model

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Role is the account role carried by every user and every issued token.
type Role string

const (
	RoleUser     Role = "user"
	RoleAdvocate Role = "advocate"
	RoleAdmin    Role = "admin"
)

// ErrInvalidRole is returned by ParseRole for anything outside the three roles.
var ErrInvalidRole = errors.New("invalid role")

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdvocate, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole converts a raw string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// AdminSeed describes the bootstrap administrator account.
type AdminSeed struct {
	Name         string
	Email        string
	PasswordHash string
	Phone        string
}

// SeedAdmin creates the administrator account unless one with the same
// email already exists. It reports whether a row was inserted.
func SeedAdmin(db *gorm.DB, seed AdminSeed) (bool, error) {
	var existing User
	err := db.Where("email = ?", seed.Email).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	admin := User{
		Name:     seed.Name,
		Email:    seed.Email,
		Password: seed.PasswordHash,
		Phone:    seed.Phone,
		Role:     RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, fmt.Errorf("failed to seed admin %s: %w", seed.Email, err)
	}
	return true, nil
}
