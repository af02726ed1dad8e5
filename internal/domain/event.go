package domain

import "time"

const (
	EventSignatureVerified   = "signature.verified"
	EventAnnouncementCreated = "announcement.created"
	EventStatusChanged       = "petition.status"
)

// Event is a petition-scoped domain event published to subscribers.
type Event struct {
	Type       string    `json:"type"`
	PetitionID string    `json:"petitionId"`
	Body       any       `json:"body,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
