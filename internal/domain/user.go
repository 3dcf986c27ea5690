package domain

import "time"

// User represents a user account. A user is reachable by Google sign-in
// (GoogleID set), by local credentials (Username+Password set), or both when
// the account has been linked.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  *string   `json:"username,omitempty"`
	Name      string    `json:"name"`
	Password  *string   `json:"-"` // bcrypt digest, never serialized
	GoogleID  *string   `json:"googleId,omitempty"`
	Picture   *string   `json:"picture,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasPassword reports whether the user can authenticate with local credentials
func (u *User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}

// GoogleProfile is the identity assertion extracted from a Google OAuth
// userinfo response.
type GoogleProfile struct {
	GoogleID string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
}

// SignupRequest is the body of POST /auth/signup
type SignupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

// SetPasswordRequest is the body of POST /auth/set-password
type SetPasswordRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenClaims is the identity assertion embedded in a bearer token
type TokenClaims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
