package domain

import "time"

// Signature is one person's support record for a petition. It is either
// unverified and holding a live token, or verified with the token cleared.
// The token is never serialized.
type Signature struct {
	ID                string    `json:"id"`
	PetitionID        string    `json:"petitionId"`
	UserID            *string   `json:"userId,omitempty"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Email             string    `json:"email"`
	PhoneNumber       *string   `json:"phoneNumber,omitempty"`
	Postcode          string    `json:"postcode"`
	ConsentToShare    bool      `json:"consentToShare"`
	Verified          bool      `json:"verified"`
	VerificationToken *string   `json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
}

// PublicSignature is the privacy projection shown on petition pages: first
// name, last initial, postcode, timestamp. Email, phone, full last name and
// user linkage are never exposed through this shape.
type PublicSignature struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Postcode  string    `json:"postcode"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicView reduces a signature to its public-safe fields.
func (s Signature) PublicView() PublicSignature {
	initial := ""
	if s.LastName != "" {
		initial = string([]rune(s.LastName)[0]) + "."
	}
	return PublicSignature{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  initial,
		Postcode:  s.Postcode,
		CreatedAt: s.CreatedAt,
	}
}

// Recipient is the address book entry used for announcement fan-out.
type Recipient struct {
	Email     string
	FirstName string
}
