// Package authapi is the HTTP client for the remote authentication service.
// It speaks the service's three JSON endpoints (login, register, me) and
// turns non-2xx responses into *Error values carrying the upstream status
// and message.
package authapi

import "time"

// User is the profile returned by the service. Unknown fields are ignored.
type User struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// LoginResponse is the body of a successful POST /api/auth/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

// Authorization is the nested token block of a register response.
type Authorization struct {
	Token string `json:"token"`
	Type  string `json:"type,omitempty"`
}

// RegisterResponse is the body of a successful POST /api/auth/register.
type RegisterResponse struct {
	Authorization Authorization `json:"authorization"`
	User          *User         `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
