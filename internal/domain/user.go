package domain

import "time"

// User is the local identity record backing an external identity-provider
// subject. Created lazily on first resolution, immutable afterwards.
type User struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"-"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Picture    *string   `json:"picture,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// IdentityAssertion is what the identity provider vouches for after a
// successful code exchange.
type IdentityAssertion struct {
	Subject string
	Email   string
	Name    string
	Picture *string
}
