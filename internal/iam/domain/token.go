package domain

import "time"

// TokenPair is what a successful sign-in or refresh returns: a short-lived
// JWT access token and a longer-lived JWT refresh token.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // always "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // access token lifetime
}
