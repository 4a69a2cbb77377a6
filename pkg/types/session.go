package types

import "time"

// User is the account payload returned by sign-in.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SessionIdentity marks an authenticated shopper. Its absence means guest mode.
type SessionIdentity struct {
	UserID    string
	Email     string
	Name      string
	Token     string
	ExpiresAt *time.Time
}

// Expired reports whether a known expiry is in the past relative to now.
func (s SessionIdentity) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// ContactInfo is cached between checkouts so forms can be prefilled.
type ContactInfo struct {
	Name       string `json:"name" validate:"required,max=120"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"omitempty,min=7,max=20"`
	Address    string `json:"address,omitempty" validate:"max=240"`
	City       string `json:"city,omitempty" validate:"max=80"`
	PostalCode string `json:"postalCode,omitempty" validate:"omitempty,numeric,len=6"`
}
