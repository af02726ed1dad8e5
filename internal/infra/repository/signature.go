package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civicsignal/petitiond/internal/domain"
	"github.com/civicsignal/petitiond/internal/infra/database/models"
)

type SignatureRepository struct {
	db     *gorm.DB
	counts *CountCache
}

func NewSignatureRepository(db *gorm.DB, counts *CountCache) *SignatureRepository {
	return &SignatureRepository{db: db, counts: counts}
}

// Create inserts an unverified signature holding its verification token.
// For authenticated signers the partial unique index on
// (petition_id, user_id) is the final arbiter against concurrent duplicate
// submissions; a constraint hit surfaces as ErrDuplicateSignature.
func (r *SignatureRepository) Create(ctx context.Context, sig domain.Signature) (domain.Signature, error) {
	row := models.Signature{
		ID:                uuid.NewString(),
		PetitionID:        sig.PetitionID,
		UserID:            sig.UserID,
		FirstName:         sig.FirstName,
		LastName:          sig.LastName,
		Email:             sig.Email,
		PhoneNumber:       sig.PhoneNumber,
		Postcode:          sig.Postcode,
		ConsentToShare:    sig.ConsentToShare,
		Verified:          false,
		VerificationToken: sig.VerificationToken,
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.Signature{}, domain.ErrDuplicateSignature
	}
	if err != nil {
		return domain.Signature{}, err
	}
	return signatureToDomain(row), nil
}

// Delete removes a signature row. Used to unwind a submission whose
// verification email could not be sent.
func (r *SignatureRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Signature{}, "id = ?", id).Error
}

// Exists reports whether any signature, verified or not, ties the user to
// the petition.
func (r *SignatureRepository) Exists(ctx context.Context, petitionID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Signature{}).
		Where("petition_id = ? AND user_id = ?", petitionID, userID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FindVerified returns the user's verified signature on the petition.
func (r *SignatureRepository) FindVerified(ctx context.Context, petitionID, userID string) (domain.Signature, error) {
	var row models.Signature
	err := r.db.WithContext(ctx).
		Where("petition_id = ? AND user_id = ? AND verified = ?", petitionID, userID, true).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Signature{}, domain.NotFoundError{Resource: "verified signature"}
	}
	if err != nil {
		return domain.Signature{}, err
	}
	return signatureToDomain(row), nil
}

// VerifyToken consumes a verification token: flips the row to verified and
// clears the token. The update keeps the token in its predicate so that of
// two concurrent verifies only one consumes it; the loser sees zero rows
// affected and gets NotFoundError, which makes the token single-use.
func (r *SignatureRepository) VerifyToken(ctx context.Context, token string) (domain.Signature, error) {
	var row models.Signature
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("verification_token = ?", token).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Resource: "verification token"}
		}
		if err != nil {
			return err
		}
		res := tx.Model(&models.Signature{}).
			Where("id = ? AND verification_token = ?", row.ID, token).
			Updates(map[string]any{
				"verified":           true,
				"verification_token": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "verification token"}
		}
		return nil
	})
	if err != nil {
		return domain.Signature{}, err
	}

	r.counts.Invalidate(row.PetitionID)

	row.Verified = true
	row.VerificationToken = nil
	return signatureToDomain(row), nil
}

// ListVerifiedByUser returns the user's verified signatures newest-first.
// Unverified signatures stay out of the caller's history; they count toward
// nothing until the token is consumed.
func (r *SignatureRepository) ListVerifiedByUser(ctx context.Context, userID string) ([]domain.Signature, error) {
	var rows []models.Signature
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND verified = ?", userID, true).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return signaturesToDomain(rows), nil
}

// ListByPetition returns the full unredacted list, all verification states.
// Owner-only; authorization happens in the usecase.
func (r *SignatureRepository) ListByPetition(ctx context.Context, petitionID string) ([]domain.Signature, error) {
	var rows []models.Signature
	err := r.db.WithContext(ctx).
		Where("petition_id = ?", petitionID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return signaturesToDomain(rows), nil
}

// ListVerifiedRecipients returns the verified signers' addresses for
// announcement fan-out.
func (r *SignatureRepository) ListVerifiedRecipients(ctx context.Context, petitionID string) ([]domain.Recipient, error) {
	var rows []models.Signature
	err := r.db.WithContext(ctx).
		Select("email", "first_name").
		Where("petition_id = ? AND verified = ?", petitionID, true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	recipients := make([]domain.Recipient, 0, len(rows))
	for _, row := range rows {
		recipients = append(recipients, domain.Recipient{
			Email:     row.Email,
			FirstName: row.FirstName,
		})
	}
	return recipients, nil
}

func signatureToDomain(m models.Signature) domain.Signature {
	return domain.Signature{
		ID:                m.ID,
		PetitionID:        m.PetitionID,
		UserID:            m.UserID,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Email:             m.Email,
		PhoneNumber:       m.PhoneNumber,
		Postcode:          m.Postcode,
		ConsentToShare:    m.ConsentToShare,
		Verified:          m.Verified,
		VerificationToken: m.VerificationToken,
		CreatedAt:         m.CreatedAt,
	}
}

func signaturesToDomain(rows []models.Signature) []domain.Signature {
	out := make([]domain.Signature, 0, len(rows))
	for _, row := range rows {
		out = append(out, signatureToDomain(row))
	}
	return out
}
