package usecase

import (
	"context"
	"log/slog"

	"github.com/civicsignal/petitiond/internal/domain"
)

type EngagementUsecase struct {
	engagement  EngagementRepository
	petitions   PetitionRepository
	signatures  SignatureRepository
	eligibility CommentEligibility
	notifier    Notifier
	events      EventPublisher
	logger      *slog.Logger
}

func NewEngagementUsecase(
	engagement EngagementRepository,
	petitions PetitionRepository,
	signatures SignatureRepository,
	eligibility CommentEligibility,
	notifier Notifier,
	events EventPublisher,
	logger *slog.Logger,
) *EngagementUsecase {
	return &EngagementUsecase{
		engagement:  engagement,
		petitions:   petitions,
		signatures:  signatures,
		eligibility: eligibility,
		notifier:    notifier,
		events:      events,
		logger:      logger,
	}
}

// CreateComment requires the acting user to hold a verified signature on the
// petition. The commenter's name is snapshotted from that signature, so later
// identity changes never rewrite old comments.
func (uc *EngagementUsecase) CreateComment(ctx context.Context, petitionID string, acting domain.User, text string) (domain.Comment, error) {
	if err := requireNonEmpty("comment", text); err != nil {
		return domain.Comment{}, err
	}

	if _, err := uc.petitions.Get(ctx, petitionID); err != nil {
		return domain.Comment{}, err
	}

	sig, eligible, err := uc.eligibility.EligibleToComment(ctx, petitionID, acting.ID)
	if err != nil {
		return domain.Comment{}, err
	}
	if !eligible {
		return domain.Comment{}, domain.ErrAuthorizationDenied
	}

	return uc.engagement.CreateComment(ctx, domain.Comment{
		PetitionID:  petitionID,
		SignatureID: &sig.ID,
		FirstName:   sig.FirstName,
		LastName:    sig.LastName,
		Comment:     text,
	})
}

func (uc *EngagementUsecase) ListComments(ctx context.Context, petitionID string) ([]domain.Comment, error) {
	if _, err := uc.petitions.Get(ctx, petitionID); err != nil {
		return nil, err
	}
	return uc.engagement.ListComments(ctx, petitionID)
}

type CreateAnnouncementInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateAnnouncement posts an update on behalf of the petition creator and
// fans it out by email to every currently-verified signer. The fan-out is
// fire-and-forget; the response never waits on delivery.
func (uc *EngagementUsecase) CreateAnnouncement(ctx context.Context, petitionID string, acting domain.User, input CreateAnnouncementInput) (domain.Announcement, error) {
	if err := requireNonEmpty("title", input.Title); err != nil {
		return domain.Announcement{}, err
	}
	if err := requireNonEmpty("content", input.Content); err != nil {
		return domain.Announcement{}, err
	}

	petition, err := uc.petitions.Get(ctx, petitionID)
	if err != nil {
		return domain.Announcement{}, err
	}
	if petition.CreatedByID != acting.ID {
		return domain.Announcement{}, domain.ErrAuthorizationDenied
	}

	created, err := uc.engagement.CreateAnnouncement(ctx, domain.Announcement{
		PetitionID: petitionID,
		Title:      input.Title,
		Content:    input.Content,
	})
	if err != nil {
		return domain.Announcement{}, err
	}

	recipients, err := uc.signatures.ListVerifiedRecipients(ctx, petitionID)
	if err != nil {
		uc.logger.Error("failed to list announcement recipients",
			slog.String("petition", petitionID),
			slog.String("error", err.Error()),
		)
	} else {
		uc.notifier.BroadcastAnnouncement(petition, created.Title, recipients)
	}

	if err := uc.events.Publish(ctx, domain.EventAnnouncementCreated, petitionID, created); err != nil {
		uc.logger.Error("failed to publish announcement event",
			slog.String("petition", petitionID),
			slog.String("error", err.Error()),
		)
	}

	return created, nil
}

func (uc *EngagementUsecase) ListAnnouncements(ctx context.Context, petitionID string) ([]domain.Announcement, error) {
	if _, err := uc.petitions.Get(ctx, petitionID); err != nil {
		return nil, err
	}
	return uc.engagement.ListAnnouncements(ctx, petitionID)
}
