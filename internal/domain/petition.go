package domain

import "time"

type PetitionStatus string

const (
	PetitionActive     PetitionStatus = "active"
	PetitionClosed     PetitionStatus = "closed"
	PetitionSuccessful PetitionStatus = "successful"
)

// Terminal reports whether the status permits no further transitions.
// closed and successful are both terminal; a petition never returns to active.
func (s PetitionStatus) Terminal() bool {
	return s == PetitionClosed || s == PetitionSuccessful
}

const (
	SignatureGoalMin = 10
	SignatureGoalMax = 1_000_000
)

type Petition struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Category      string         `json:"category"`
	ImageURL      *string        `json:"imageUrl,omitempty"`
	SignatureGoal int            `json:"signatureGoal"`
	CreatedByID   string         `json:"createdById"`
	Status        PetitionStatus `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// PetitionSummary is the list-view projection: petition, creator, and the
// count of verified signatures. Unverified signatures never contribute.
type PetitionSummary struct {
	Petition
	Creator        User  `json:"creator"`
	SignatureCount int64 `json:"signatureCount"`
}

// PetitionDetail is the public detail projection. RecentSignatures carries at
// most ten verified signatures reduced to public-safe fields.
type PetitionDetail struct {
	Petition
	Creator          User              `json:"creator"`
	SignatureCount   int64             `json:"signatureCount"`
	RecentSignatures []PublicSignature `json:"signatures"`
	HasUserSigned    bool              `json:"hasUserSigned"`
}

// PetitionUpdate is the partial-update shape for mutable petition fields.
// Status is deliberately absent; it moves only through the status transition
// path.
type PetitionUpdate struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	Category      *string `json:"category,omitempty"`
	ImageURL      *string `json:"imageUrl,omitempty"`
	SignatureGoal *int    `json:"signatureGoal,omitempty"`
}

type DecisionMaker struct {
	ID         string    `json:"id"`
	PetitionID string    `json:"petitionId"`
	Name       string    `json:"name"`
	Title      *string   `json:"title,omitempty"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"createdAt"`
}
