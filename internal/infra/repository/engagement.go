package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civicsignal/petitiond/internal/domain"
	"github.com/civicsignal/petitiond/internal/infra/database/models"
)

type EngagementRepository struct {
	db *gorm.DB
}

func NewEngagementRepository(db *gorm.DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

func (r *EngagementRepository) CreateComment(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	row := models.Comment{
		ID:          uuid.NewString(),
		PetitionID:  comment.PetitionID,
		SignatureID: comment.SignatureID,
		FirstName:   comment.FirstName,
		LastName:    comment.LastName,
		Comment:     comment.Comment,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Comment{}, err
	}
	return commentToDomain(row), nil
}

func (r *EngagementRepository) ListComments(ctx context.Context, petitionID string) ([]domain.Comment, error) {
	var rows []models.Comment
	err := r.db.WithContext(ctx).
		Where("petition_id = ?", petitionID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		out = append(out, commentToDomain(row))
	}
	return out, nil
}

func (r *EngagementRepository) CreateAnnouncement(ctx context.Context, ann domain.Announcement) (domain.Announcement, error) {
	row := models.Announcement{
		ID:         uuid.NewString(),
		PetitionID: ann.PetitionID,
		Title:      ann.Title,
		Content:    ann.Content,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Announcement{}, err
	}
	return announcementToDomain(row), nil
}

func (r *EngagementRepository) ListAnnouncements(ctx context.Context, petitionID string) ([]domain.Announcement, error) {
	var rows []models.Announcement
	err := r.db.WithContext(ctx).
		Where("petition_id = ?", petitionID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Announcement, 0, len(rows))
	for _, row := range rows {
		out = append(out, announcementToDomain(row))
	}
	return out, nil
}

func commentToDomain(m models.Comment) domain.Comment {
	return domain.Comment{
		ID:          m.ID,
		PetitionID:  m.PetitionID,
		SignatureID: m.SignatureID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Comment:     m.Comment,
		CreatedAt:   m.CreatedAt,
	}
}

func announcementToDomain(m models.Announcement) domain.Announcement {
	return domain.Announcement{
		ID:         m.ID,
		PetitionID: m.PetitionID,
		Title:      m.Title,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}
