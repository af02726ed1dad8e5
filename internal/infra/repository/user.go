package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civicsignal/petitiond/internal/domain"
	"github.com/civicsignal/petitiond/internal/infra/database/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (domain.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return domain.User{}, err
	}
	return userToDomain(user), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return domain.User{}, err
	}
	return userToDomain(user), nil
}

// Create inserts a user for a newly-seen external identity. Idempotent: a
// concurrent insert for the same external id resolves to the existing row
// instead of failing.
func (r *UserRepository) Create(ctx context.Context, assertion domain.IdentityAssertion) (domain.User, error) {
	user := models.User{
		ID:         uuid.NewString(),
		ExternalID: assertion.Subject,
		Email:      assertion.Email,
		Name:       assertion.Name,
		Picture:    assertion.Picture,
	}

	err := r.db.WithContext(ctx).Create(&user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return r.GetByExternalID(ctx, assertion.Subject)
	}
	if err != nil {
		return domain.User{}, err
	}
	return userToDomain(user), nil
}

func userToDomain(m models.User) domain.User {
	return domain.User{
		ID:         m.ID,
		ExternalID: m.ExternalID,
		Email:      m.Email,
		Name:       m.Name,
		Picture:    m.Picture,
		CreatedAt:  m.CreatedAt,
	}
}
