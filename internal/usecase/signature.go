package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/civicsignal/petitiond/internal/domain"
	"github.com/civicsignal/petitiond/internal/metrics"
)

type SignatureUsecase struct {
	signatures SignatureRepository
	petitions  PetitionRepository
	captcha    CaptchaVerifier
	notifier   Notifier
	events     EventPublisher
	logger     *slog.Logger
}

func NewSignatureUsecase(
	signatures SignatureRepository,
	petitions PetitionRepository,
	captcha CaptchaVerifier,
	notifier Notifier,
	events EventPublisher,
	logger *slog.Logger,
) *SignatureUsecase {
	return &SignatureUsecase{
		signatures: signatures,
		petitions:  petitions,
		captcha:    captcha,
		notifier:   notifier,
		events:     events,
		logger:     logger,
	}
}

type SubmitSignatureInput struct {
	PetitionID     string  `json:"petitionId"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Email          string  `json:"email"`
	PhoneNumber    *string `json:"phoneNumber,omitempty"`
	Postcode       string  `json:"postcode"`
	ConsentToShare bool    `json:"consentToShare"`
}

func (input SubmitSignatureInput) validate() error {
	if err := requireNonEmpty("firstName", input.FirstName); err != nil {
		return err
	}
	if err := requireNonEmpty("lastName", input.LastName); err != nil {
		return err
	}
	if err := requireMaxLen("firstName", input.FirstName, 100); err != nil {
		return err
	}
	if err := requireMaxLen("lastName", input.LastName, 100); err != nil {
		return err
	}
	if err := requireEmail("email", input.Email); err != nil {
		return err
	}
	if err := requireMinLen("postcode", input.Postcode, 2); err != nil {
		return err
	}
	if input.PhoneNumber != nil {
		if err := requireMaxLen("phoneNumber", *input.PhoneNumber, 20); err != nil {
			return err
		}
	}
	if !input.ConsentToShare {
		return domain.ValidationError{Field: "consentToShare", Reason: "consent is required"}
	}
	return nil
}

func newVerificationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Submit runs the full signing pipeline: captcha, field validation, petition
// status check, duplicate check for authenticated signers, insert with a
// fresh single-use token, then the verification email. The email is
// essential; when it cannot be sent the inserted row is removed again so the
// signer can retry cleanly.
func (uc *SignatureUsecase) Submit(ctx context.Context, input SubmitSignatureInput, actingUserID, captchaToken, remoteIP string) (domain.Signature, error) {
	if !uc.captcha.Verify(ctx, captchaToken, remoteIP) {
		return domain.Signature{}, domain.ErrCaptchaFailed
	}

	if err := input.validate(); err != nil {
		return domain.Signature{}, err
	}

	petition, err := uc.petitions.Get(ctx, input.PetitionID)
	if err != nil {
		return domain.Signature{}, err
	}
	if petition.Status.Terminal() {
		return domain.Signature{}, domain.ErrPetitionClosed
	}

	var userID *string
	if actingUserID != "" {
		signed, err := uc.signatures.Exists(ctx, input.PetitionID, actingUserID)
		if err != nil {
			return domain.Signature{}, err
		}
		if signed {
			return domain.Signature{}, domain.ErrDuplicateSignature
		}
		userID = &actingUserID
	}

	token, err := newVerificationToken()
	if err != nil {
		return domain.Signature{}, errors.Wrap(err, "failed to generate verification token")
	}

	created, err := uc.signatures.Create(ctx, domain.Signature{
		PetitionID:        input.PetitionID,
		UserID:            userID,
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		Email:             input.Email,
		PhoneNumber:       input.PhoneNumber,
		Postcode:          input.Postcode,
		ConsentToShare:    input.ConsentToShare,
		Verified:          false,
		VerificationToken: &token,
	})
	if err != nil {
		return domain.Signature{}, err
	}

	if err := uc.notifier.SendVerification(ctx, created.Email, created.FirstName, petition.Title, token); err != nil {
		if delErr := uc.signatures.Delete(ctx, created.ID); delErr != nil {
			uc.logger.Error("failed to remove signature after email failure",
				slog.String("signature", created.ID),
				slog.String("error", delErr.Error()),
			)
		}
		return domain.Signature{}, domain.DependencyError{Op: "verification email", Err: err}
	}

	metrics.SignaturesSubmitted.Inc()
	return created, nil
}

// Verify consumes a verification token. The token is cleared on success, so a
// second call with the same token reports not-found.
func (uc *SignatureUsecase) Verify(ctx context.Context, token string) (domain.Signature, error) {
	if token == "" {
		return domain.Signature{}, domain.NotFoundError{Resource: "verification token"}
	}

	sig, err := uc.signatures.VerifyToken(ctx, token)
	if err != nil {
		return domain.Signature{}, err
	}

	metrics.SignaturesVerified.Inc()

	if err := uc.events.Publish(ctx, domain.EventSignatureVerified, sig.PetitionID, sig.PublicView()); err != nil {
		uc.logger.Error("failed to publish verification event",
			slog.String("petition", sig.PetitionID),
			slog.String("error", err.Error()),
		)
	}

	return sig, nil
}

// CheckSigned reports whether the user holds any signature on the petition,
// verified or not. Drives the hasUserSigned flag on the public detail view.
func (uc *SignatureUsecase) CheckSigned(ctx context.Context, petitionID, userID string) (bool, error) {
	return uc.signatures.Exists(ctx, petitionID, userID)
}

// ListMine returns the caller's verified signatures, newest first. Unverified
// signatures do not count toward anything yet, so they are not shown.
func (uc *SignatureUsecase) ListMine(ctx context.Context, userID string) ([]domain.Signature, error) {
	return uc.signatures.ListVerifiedByUser(ctx, userID)
}

// ListForOwner returns the full unredacted signature list. Only the petition
// creator may see it.
func (uc *SignatureUsecase) ListForOwner(ctx context.Context, petitionID string, acting domain.User) ([]domain.Signature, error) {
	petition, err := uc.petitions.Get(ctx, petitionID)
	if err != nil {
		return nil, err
	}
	if petition.CreatedByID != acting.ID {
		return nil, domain.ErrAuthorizationDenied
	}
	return uc.signatures.ListByPetition(ctx, petitionID)
}

// EligibleToComment returns the user's verified signature on the petition
// when one exists. Commenting is gated on this.
func (uc *SignatureUsecase) EligibleToComment(ctx context.Context, petitionID, userID string) (domain.Signature, bool, error) {
	sig, err := uc.signatures.FindVerified(ctx, petitionID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Signature{}, false, nil
		}
		return domain.Signature{}, false, err
	}
	return sig, true, nil
}
