package auth

import "github.com/golang-jwt/jwt/v5"

// SessionPayload captures the data available when minting a session token.
type SessionPayload struct {
	UserID string
	Email  string
	Name   string
	Admin  bool
}

// SessionClaims is the typed JWT handed to signed-in shoppers.
type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Admin bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}
