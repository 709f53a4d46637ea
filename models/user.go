package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User represents one roster member's login account. The roster is
// fixed configuration; accounts are seeded at startup, never
// self-registered.
type User struct {
	ID         int       `json:"id" bson:"_id"`
	Name       string    `json:"name" bson:"name"`
	Password   string    `json:"-" bson:"password"` // Never serialize password in JSON
	BlazinOnly bool      `json:"blazinOnly" bson:"blazinOnly"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// LoginRequest represents login form data
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// HashPassword hashes the user's password using bcrypt
func (u *User) HashPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies the provided password against the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// ToSafeUser returns a copy of the user without sensitive fields
func (u *User) ToSafeUser() User {
	return User{
		ID:         u.ID,
		Name:       u.Name,
		BlazinOnly: u.BlazinOnly,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
