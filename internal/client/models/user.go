// Package models defines the client-side shapes of the research API's
// payloads: users, archive records, annotations and predictions.
package models

import "errors"

// ErrIncompleteUser is returned when an identity payload lacks the fields a
// session needs.
var ErrIncompleteUser = errors.New("identity payload is missing id or username")

// User is the identity record returned by /auth/me, /auth/login and
// /auth/signup.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Validate rejects identity payloads that decoded but carry no identity.
func (u *User) Validate() error {
	if u == nil || u.ID == "" || u.Username == "" {
		return ErrIncompleteUser
	}
	return nil
}

// AuthResponse is the body of a successful login or signup.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
	Message     string `json:"message"`
}

// SignupRequest is the JSON body of /auth/signup.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
