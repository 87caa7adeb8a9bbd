// Package auth is the browser-facing side of authentication: it identifies
// each browser client, attaches that client's session store to the request,
// and serves the login, register and logout actions on top of it.
//
// Credentials are checked by the remote authentication service, never here.
package auth

import (
	"strings"
)

// LoginRequest holds the data submitted by the login form.
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// RegisterRequest holds the data submitted by the registration form.
type RegisterRequest struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Password length bounds enforced before calling the service.
const (
	minPasswordLen = 8
	maxPasswordLen = 128
)

// normalize trims surrounding whitespace from identity fields.
func (r *LoginRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

func (r *RegisterRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
}

// validateLoginRequest returns a user-facing message, or "" when valid.
func validateLoginRequest(req *LoginRequest) string {
	if req.Email == "" {
		return "email is required"
	}
	if req.Password == "" {
		return "password is required"
	}
	return ""
}

// validateRegisterRequest returns a user-facing message, or "" when valid.
func validateRegisterRequest(req *RegisterRequest) string {
	if req.Name == "" {
		return "name is required"
	}
	if len(req.Name) > 100 {
		return "name must be at most 100 characters"
	}
	if req.Email == "" {
		return "email is required"
	}
	if !strings.Contains(req.Email, "@") || len(req.Email) > 255 {
		return "email address is not valid"
	}
	if len(req.Password) < minPasswordLen {
		return "password must be at least 8 characters"
	}
	if len(req.Password) > maxPasswordLen {
		return "password must be at most 128 characters"
	}
	return ""
}
