package usecase

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/civicsignal/petitiond/internal/domain"
)

type PetitionUsecase struct {
	petitions PetitionRepository
	users     UserReader
	captcha   CaptchaVerifier
	notifier  Notifier
	events    EventPublisher
	logger    *slog.Logger
}

func NewPetitionUsecase(
	petitions PetitionRepository,
	users UserReader,
	captcha CaptchaVerifier,
	notifier Notifier,
	events EventPublisher,
	logger *slog.Logger,
) *PetitionUsecase {
	return &PetitionUsecase{
		petitions: petitions,
		users:     users,
		captcha:   captcha,
		notifier:  notifier,
		events:    events,
		logger:    logger,
	}
}

func (uc *PetitionUsecase) List(ctx context.Context) ([]domain.PetitionSummary, error) {
	return uc.petitions.ListSummaries(ctx)
}

// Get returns the public detail view. The hasUserSigned flag is filled in by
// the caller from the signature workflow when an acting user is present.
func (uc *PetitionUsecase) Get(ctx context.Context, id string) (domain.PetitionDetail, error) {
	return uc.petitions.GetDetail(ctx, id)
}

type DecisionMakerInput struct {
	Name  string  `json:"name"`
	Title *string `json:"title,omitempty"`
	Email string  `json:"email"`
}

type CreatePetitionInput struct {
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	Category       string               `json:"category"`
	ImageURL       *string              `json:"imageUrl,omitempty"`
	SignatureGoal  int                  `json:"signatureGoal"`
	DecisionMakers []DecisionMakerInput `json:"decisionMakers,omitempty"`
}

func (input CreatePetitionInput) validate() error {
	if err := requireMinLen("title", input.Title, 5); err != nil {
		return err
	}
	if err := requireMinLen("description", input.Description, 20); err != nil {
		return err
	}
	if err := requireNonEmpty("category", input.Category); err != nil {
		return err
	}
	return requireGoal(input.SignatureGoal)
}

// Create inserts a new petition for the acting user, always starting out
// active. Decision-maker rows are best-effort: a failure there is logged and
// never rolls back the petition itself.
func (uc *PetitionUsecase) Create(ctx context.Context, input CreatePetitionInput, creator domain.User, captchaToken, remoteIP string) (domain.Petition, error) {
	if !uc.captcha.Verify(ctx, captchaToken, remoteIP) {
		return domain.Petition{}, domain.ErrCaptchaFailed
	}

	if err := input.validate(); err != nil {
		return domain.Petition{}, err
	}

	created, err := uc.petitions.Create(ctx, domain.Petition{
		Title:         input.Title,
		Description:   input.Description,
		Category:      input.Category,
		ImageURL:      input.ImageURL,
		SignatureGoal: input.SignatureGoal,
		CreatedByID:   creator.ID,
	})
	if err != nil {
		return domain.Petition{}, errors.Wrap(err, "failed to create petition")
	}

	if len(input.DecisionMakers) > 0 {
		dms := make([]domain.DecisionMaker, 0, len(input.DecisionMakers))
		for _, dm := range input.DecisionMakers {
			if dm.Name == "" || !validEmail(dm.Email) {
				uc.logger.Warn("skipping invalid decision maker",
					slog.String("petition", created.ID),
					slog.String("name", dm.Name),
				)
				continue
			}
			dms = append(dms, domain.DecisionMaker{
				Name:  dm.Name,
				Title: dm.Title,
				Email: dm.Email,
			})
		}
		if _, err := uc.petitions.CreateDecisionMakers(ctx, created.ID, dms); err != nil {
			uc.logger.Error("failed to create decision makers",
				slog.String("petition", created.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return created, nil
}

// Update mutates title, description, category, image and goal. Only the
// creator may call it; status never moves through this path.
func (uc *PetitionUsecase) Update(ctx context.Context, id string, acting domain.User, upd domain.PetitionUpdate) (domain.Petition, error) {
	petition, err := uc.petitions.Get(ctx, id)
	if err != nil {
		return domain.Petition{}, err
	}
	if petition.CreatedByID != acting.ID {
		return domain.Petition{}, domain.ErrAuthorizationDenied
	}

	if upd.Title != nil {
		if err := requireMinLen("title", *upd.Title, 5); err != nil {
			return domain.Petition{}, err
		}
	}
	if upd.Description != nil {
		if err := requireMinLen("description", *upd.Description, 20); err != nil {
			return domain.Petition{}, err
		}
	}
	if upd.Category != nil {
		if err := requireNonEmpty("category", *upd.Category); err != nil {
			return domain.Petition{}, err
		}
	}
	if upd.SignatureGoal != nil {
		if err := requireGoal(*upd.SignatureGoal); err != nil {
			return domain.Petition{}, err
		}
	}

	return uc.petitions.Update(ctx, id, upd)
}

// UpdateStatus performs the one-way transition out of active. A petition that
// is already closed or successful never changes again, and nothing ever
// transitions back to active.
func (uc *PetitionUsecase) UpdateStatus(ctx context.Context, id string, acting domain.User, status domain.PetitionStatus) (domain.Petition, error) {
	if status == domain.PetitionActive {
		return domain.Petition{}, domain.ErrInvalidTransition
	}
	if status != domain.PetitionClosed && status != domain.PetitionSuccessful {
		return domain.Petition{}, domain.ValidationError{Field: "status", Reason: "must be closed or successful"}
	}

	petition, err := uc.petitions.Get(ctx, id)
	if err != nil {
		return domain.Petition{}, err
	}
	if petition.CreatedByID != acting.ID {
		return domain.Petition{}, domain.ErrAuthorizationDenied
	}
	if petition.Status == status || petition.Status.Terminal() {
		return domain.Petition{}, domain.ErrInvalidTransition
	}

	updated, err := uc.petitions.UpdateStatus(ctx, id, status)
	if err != nil {
		return domain.Petition{}, err
	}

	if err := uc.events.Publish(ctx, domain.EventStatusChanged, id, updated); err != nil {
		uc.logger.Error("failed to publish status event",
			slog.String("petition", id),
			slog.String("error", err.Error()),
		)
	}

	return updated, nil
}

// Delete removes the petition and every child row under it.
func (uc *PetitionUsecase) Delete(ctx context.Context, id string, acting domain.User) error {
	petition, err := uc.petitions.Get(ctx, id)
	if err != nil {
		return err
	}
	if petition.CreatedByID != acting.ID {
		return domain.ErrAuthorizationDenied
	}

	return uc.petitions.Delete(ctx, id)
}

func (uc *PetitionUsecase) ListDecisionMakers(ctx context.Context, petitionID string) ([]domain.DecisionMaker, error) {
	if _, err := uc.petitions.Get(ctx, petitionID); err != nil {
		return nil, err
	}
	return uc.petitions.ListDecisionMakers(ctx, petitionID)
}

// ContactOrganizer relays a supporter's message to the petition creator's
// email. Delivery failure is surfaced to the sender since delivery is the
// entire purpose of the request.
func (uc *PetitionUsecase) ContactOrganizer(ctx context.Context, petitionID string, msg domain.ContactMessage, captchaToken, remoteIP string) error {
	if !uc.captcha.Verify(ctx, captchaToken, remoteIP) {
		return domain.ErrCaptchaFailed
	}

	if err := requireNonEmpty("firstName", msg.FirstName); err != nil {
		return err
	}
	if err := requireNonEmpty("lastName", msg.LastName); err != nil {
		return err
	}
	if err := requireMaxLen("firstName", msg.FirstName, 100); err != nil {
		return err
	}
	if err := requireMaxLen("lastName", msg.LastName, 100); err != nil {
		return err
	}
	if err := requireEmail("email", msg.Email); err != nil {
		return err
	}
	if err := requireMinLen("message", msg.Message, 10); err != nil {
		return err
	}
	if err := requireMaxLen("message", msg.Message, 5000); err != nil {
		return err
	}
	if err := requireMaxLen("phone", msg.Phone, 20); err != nil {
		return err
	}

	petition, err := uc.petitions.Get(ctx, petitionID)
	if err != nil {
		return err
	}

	organizer, err := uc.users.GetByID(ctx, petition.CreatedByID)
	if err != nil {
		return err
	}

	if err := uc.notifier.SendContact(ctx, organizer, petition, msg); err != nil {
		return domain.DependencyError{Op: "contact email", Err: err}
	}

	return nil
}
