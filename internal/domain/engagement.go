package domain

import "time"

// Comment is a child of a petition, authored by a verified signer. The
// signer's name is snapshotted at creation time.
type Comment struct {
	ID          string    `json:"id"`
	PetitionID  string    `json:"petitionId"`
	SignatureID *string   `json:"signatureId,omitempty"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ContactMessage is a supporter's message relayed to the petition organizer.
type ContactMessage struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Message   string `json:"message"`
}

type Announcement struct {
	ID         string    `json:"id"`
	PetitionID string    `json:"petitionId"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}
