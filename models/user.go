package models

import "time"

// Admin roles
const (
	RoleAdmin = "admin"
)

// User is an admin account stored in Firestore
// @Description Admin account information
type User struct {
	ID        string    `json:"id" firestore:"-" example:"admin@example.com"`
	Email     string    `json:"email" firestore:"email" example:"admin@example.com"`
	Name      string    `json:"name" firestore:"name" example:"Jane Admin"`
	Password  string    `json:"-" firestore:"password"` // bcrypt hash
	Role      string    `json:"role" firestore:"role" example:"admin"`
	Provider  string    `json:"provider" firestore:"provider" example:"email"` // "email" or "google"
	GoogleID  string    `json:"-" firestore:"googleId,omitempty"`
	LastLogin time.Time `json:"lastLogin" firestore:"lastLogin"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// LoginRequest represents login request
// @Description Admin login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// GoogleAuthRequest represents Google SSO authentication request
// @Description Google SSO authentication request
type GoogleAuthRequest struct {
	IDToken string `json:"idToken" binding:"required" example:"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// AuthResponse represents authentication response
// @Description Authentication response with JWT token
type AuthResponse struct {
	Token   string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User    *User  `json:"user"`
	Message string `json:"message,omitempty" example:"Login successful"`
}

// ProfileResponse represents the current admin
// @Description Admin profile response
type ProfileResponse struct {
	User *User `json:"user"`
}

// LogoUploadResponse represents company logo upload response
// @Description Company logo upload response
type LogoUploadResponse struct {
	URL     string `json:"url" example:"https://storage.googleapis.com/bucket/logos/acme.png"`
	Message string `json:"message" example:"Logo uploaded successfully"`
}

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}
