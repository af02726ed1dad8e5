package usecase

import (
	"context"

	"github.com/civicsignal/petitiond/internal/domain"
)

// PetitionRepository defines persistence for petitions and their
// decision-makers.
type PetitionRepository interface {
	ListSummaries(ctx context.Context) ([]domain.PetitionSummary, error)
	Get(ctx context.Context, id string) (domain.Petition, error)
	GetDetail(ctx context.Context, id string) (domain.PetitionDetail, error)
	Create(ctx context.Context, p domain.Petition) (domain.Petition, error)
	Update(ctx context.Context, id string, upd domain.PetitionUpdate) (domain.Petition, error)
	UpdateStatus(ctx context.Context, id string, status domain.PetitionStatus) (domain.Petition, error)
	Delete(ctx context.Context, id string) error
	CreateDecisionMakers(ctx context.Context, petitionID string, dms []domain.DecisionMaker) ([]domain.DecisionMaker, error)
	ListDecisionMakers(ctx context.Context, petitionID string) ([]domain.DecisionMaker, error)
}

// SignatureRepository defines persistence for signatures and their
// verification tokens.
type SignatureRepository interface {
	Create(ctx context.Context, sig domain.Signature) (domain.Signature, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, petitionID, userID string) (bool, error)
	FindVerified(ctx context.Context, petitionID, userID string) (domain.Signature, error)
	VerifyToken(ctx context.Context, token string) (domain.Signature, error)
	ListVerifiedByUser(ctx context.Context, userID string) ([]domain.Signature, error)
	ListByPetition(ctx context.Context, petitionID string) ([]domain.Signature, error)
	ListVerifiedRecipients(ctx context.Context, petitionID string) ([]domain.Recipient, error)
}

// EngagementRepository defines persistence for comments and announcements.
type EngagementRepository interface {
	CreateComment(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	ListComments(ctx context.Context, petitionID string) ([]domain.Comment, error)
	CreateAnnouncement(ctx context.Context, ann domain.Announcement) (domain.Announcement, error)
	ListAnnouncements(ctx context.Context, petitionID string) ([]domain.Announcement, error)
}

// CommentEligibility gates commenting on holding a verified signature.
// Implemented by SignatureUsecase.
type CommentEligibility interface {
	EligibleToComment(ctx context.Context, petitionID, userID string) (domain.Signature, bool, error)
}

// UserReader resolves local users by id.
type UserReader interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
}

// CaptchaVerifier is the boolean abuse gate consulted before mutating public
// endpoints. Implementations are fail-closed.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) bool
}

// Notifier dispatches the platform's transactional emails.
type Notifier interface {
	SendVerification(ctx context.Context, to, firstName, petitionTitle, token string) error
	BroadcastAnnouncement(petition domain.Petition, announcementTitle string, recipients []domain.Recipient)
	SendContact(ctx context.Context, organizer domain.User, petition domain.Petition, msg domain.ContactMessage) error
}

// EventPublisher emits petition-scoped events for realtime subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, petitionID string, body any) error
}
