package model

import "time"

// User is a registered account. Rows are append-only: users are never
// updated or deleted once created.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the registration form payload.
type RegisterRequest struct {
	Username string `form:"username" json:"username" binding:"required,min=3,max=64"`
	Email    string `form:"email" json:"email" binding:"required,email,max=254"`
	Password string `form:"password" json:"password" binding:"required,min=6,max=128"`
}

// LoginRequest is the login form payload. Remember extends the session
// lifetime when present.
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required,max=64"`
	Password string `form:"password" json:"password" binding:"required,max=128"`
	Remember string `form:"remember" json:"remember"`
}
