package model

const (
	RoleUser      = "user"
	RoleInstaller = "installer"
	RoleAdmin     = "admin"
)

// User represents an account created by the marketplace signup flow
type User struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"` // Do not expose password hash in JSON responses
	Role         string  `json:"role"`
	IsBanned     bool    `json:"-"`
	Picture      *string `json:"picture"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionUser is the identity carried by a session token
type SessionUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
}
