package models

import (
	"time"
)

type User struct {
	ID         string    `json:"id" gorm:"primaryKey;type:text"`
	ExternalID string    `json:"-" gorm:"type:text;uniqueIndex;not null"`
	Email      string    `json:"email" gorm:"type:text;not null"`
	Name       string    `json:"name" gorm:"type:text;not null"`
	Picture    *string   `json:"picture,omitempty" gorm:"type:text"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Petition struct {
	ID            string    `json:"id" gorm:"primaryKey;type:text"`
	Title         string    `json:"title" gorm:"type:text;not null"`
	Description   string    `json:"description" gorm:"type:text;not null"`
	Category      string    `json:"category" gorm:"type:text;not null"`
	ImageURL      *string   `json:"imageUrl,omitempty" gorm:"type:text"`
	SignatureGoal int       `json:"signatureGoal" gorm:"not null;default:100"`
	CreatedByID   string    `json:"createdById" gorm:"type:text;index;not null"`
	Creator       User      `json:"-" gorm:"foreignKey:CreatedByID"`
	Status        string    `json:"status" gorm:"type:text;not null;default:active"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Signature holds one support record. The partial unique index on
// (petition_id, user_id) backs the duplicate check for authenticated signers;
// anonymous rows (null user_id) are excluded from it.
type Signature struct {
	ID                string    `json:"id" gorm:"primaryKey;type:text"`
	PetitionID        string    `json:"petitionId" gorm:"type:text;index;not null;index:idx_signatures_petition_user,unique,where:user_id IS NOT NULL"`
	Petition          Petition  `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	UserID            *string   `json:"userId,omitempty" gorm:"type:text;index:idx_signatures_petition_user,unique,where:user_id IS NOT NULL"`
	FirstName         string    `json:"firstName" gorm:"type:text;not null"`
	LastName          string    `json:"lastName" gorm:"type:text;not null"`
	Email             string    `json:"email" gorm:"type:text;not null"`
	PhoneNumber       *string   `json:"phoneNumber,omitempty" gorm:"type:text"`
	Postcode          string    `json:"postcode" gorm:"type:text;not null"`
	ConsentToShare    bool      `json:"consentToShare" gorm:"not null;default:false"`
	Verified          bool      `json:"verified" gorm:"not null;default:false;index"`
	VerificationToken *string   `json:"-" gorm:"type:text;index"`
	CreatedAt         time.Time `json:"createdAt"`
}

type Announcement struct {
	ID         string    `json:"id" gorm:"primaryKey;type:text"`
	PetitionID string    `json:"petitionId" gorm:"type:text;index;not null"`
	Petition   Petition  `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Title      string    `json:"title" gorm:"type:text;not null"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Comment struct {
	ID          string     `json:"id" gorm:"primaryKey;type:text"`
	PetitionID  string     `json:"petitionId" gorm:"type:text;index;not null"`
	Petition    Petition   `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	SignatureID *string    `json:"signatureId,omitempty" gorm:"type:text"`
	Signature   *Signature `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	FirstName   string     `json:"firstName" gorm:"type:text;not null"`
	LastName    string     `json:"lastName" gorm:"type:text;not null"`
	Comment     string     `json:"comment" gorm:"type:text;not null"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type DecisionMaker struct {
	ID         string    `json:"id" gorm:"primaryKey;type:text"`
	PetitionID string    `json:"petitionId" gorm:"type:text;index;not null"`
	Petition   Petition  `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	Name       string    `json:"name" gorm:"type:text;not null"`
	Title      *string   `json:"title,omitempty" gorm:"type:text"`
	Email      string    `json:"email" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"createdAt"`
}
