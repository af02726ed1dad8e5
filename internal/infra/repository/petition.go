package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/civicsignal/petitiond/internal/domain"
	"github.com/civicsignal/petitiond/internal/infra/database/models"
)

const recentSignatureLimit = 10

type PetitionRepository struct {
	db     *gorm.DB
	counts *CountCache
}

func NewPetitionRepository(db *gorm.DB, counts *CountCache) *PetitionRepository {
	return &PetitionRepository{db: db, counts: counts}
}

// ListSummaries returns every petition newest-first with its creator and the
// verified-only signature count.
func (r *PetitionRepository) ListSummaries(ctx context.Context) ([]domain.PetitionSummary, error) {
	var petitions []models.Petition
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Order("created_at DESC").
		Find(&petitions).Error
	if err != nil {
		return nil, err
	}

	type countRow struct {
		PetitionID string
		N          int64
	}
	var rows []countRow
	err = r.db.WithContext(ctx).
		Model(&models.Signature{}).
		Select("petition_id, count(*) as n").
		Where("verified = ?", true).
		Group("petition_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.PetitionID] = row.N
	}

	summaries := make([]domain.PetitionSummary, 0, len(petitions))
	for _, p := range petitions {
		summaries = append(summaries, domain.PetitionSummary{
			Petition:       petitionToDomain(p),
			Creator:        userToDomain(p.Creator),
			SignatureCount: counts[p.ID],
		})
	}
	return summaries, nil
}

func (r *PetitionRepository) Get(ctx context.Context, id string) (domain.Petition, error) {
	var petition models.Petition
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&petition).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Petition{}, domain.NotFoundError{Resource: "petition"}
	}
	if err != nil {
		return domain.Petition{}, err
	}
	return petitionToDomain(petition), nil
}

// GetDetail returns the public detail projection: creator, verified count,
// and the ten most recent verified signatures reduced to public-safe fields.
func (r *PetitionRepository) GetDetail(ctx context.Context, id string) (domain.PetitionDetail, error) {
	var petition models.Petition
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Where("id = ?", id).
		Take(&petition).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.PetitionDetail{}, domain.NotFoundError{Resource: "petition"}
	}
	if err != nil {
		return domain.PetitionDetail{}, err
	}

	count, ok := r.counts.Get(id)
	if !ok {
		err = r.db.WithContext(ctx).
			Model(&models.Signature{}).
			Where("petition_id = ? AND verified = ?", id, true).
			Count(&count).Error
		if err != nil {
			return domain.PetitionDetail{}, err
		}
		r.counts.Set(id, count)
	}

	var recent []models.Signature
	err = r.db.WithContext(ctx).
		Where("petition_id = ? AND verified = ?", id, true).
		Order("created_at DESC").
		Limit(recentSignatureLimit).
		Find(&recent).Error
	if err != nil {
		return domain.PetitionDetail{}, err
	}

	public := make([]domain.PublicSignature, 0, len(recent))
	for _, sig := range recent {
		public = append(public, signatureToDomain(sig).PublicView())
	}

	return domain.PetitionDetail{
		Petition:         petitionToDomain(petition),
		Creator:          userToDomain(petition.Creator),
		SignatureCount:   count,
		RecentSignatures: public,
	}, nil
}

// Create inserts a petition with status forced to active.
func (r *PetitionRepository) Create(ctx context.Context, p domain.Petition) (domain.Petition, error) {
	petition := models.Petition{
		ID:            uuid.NewString(),
		Title:         p.Title,
		Description:   p.Description,
		Category:      p.Category,
		ImageURL:      p.ImageURL,
		SignatureGoal: p.SignatureGoal,
		CreatedByID:   p.CreatedByID,
		Status:        string(domain.PetitionActive),
	}
	if err := r.db.WithContext(ctx).Create(&petition).Error; err != nil {
		return domain.Petition{}, err
	}
	return petitionToDomain(petition), nil
}

// Update applies the mutable fields only. Status never moves through here.
func (r *PetitionRepository) Update(ctx context.Context, id string, upd domain.PetitionUpdate) (domain.Petition, error) {
	assignments := map[string]any{}
	if upd.Title != nil {
		assignments["title"] = *upd.Title
	}
	if upd.Description != nil {
		assignments["description"] = *upd.Description
	}
	if upd.Category != nil {
		assignments["category"] = *upd.Category
	}
	if upd.ImageURL != nil {
		assignments["image_url"] = *upd.ImageURL
	}
	if upd.SignatureGoal != nil {
		assignments["signature_goal"] = *upd.SignatureGoal
	}

	if len(assignments) > 0 {
		result := r.db.WithContext(ctx).
			Model(&models.Petition{}).
			Where("id = ?", id).
			Updates(assignments)
		if result.Error != nil {
			return domain.Petition{}, result.Error
		}
		if result.RowsAffected == 0 {
			return domain.Petition{}, domain.NotFoundError{Resource: "petition"}
		}
	}

	return r.Get(ctx, id)
}

func (r *PetitionRepository) UpdateStatus(ctx context.Context, id string, status domain.PetitionStatus) (domain.Petition, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Petition{}).
		Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		return domain.Petition{}, result.Error
	}
	if result.RowsAffected == 0 {
		return domain.Petition{}, domain.NotFoundError{Resource: "petition"}
	}
	return r.Get(ctx, id)
}

// Delete removes the petition and every child row in one transaction. The
// foreign keys cascade as well; the explicit ordered delete keeps the
// behavior identical on backends where cascade enforcement is off.
func (r *PetitionRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Comment{}, "petition_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Signature{}, "petition_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Announcement{}, "petition_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.DecisionMaker{}, "petition_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Petition{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NotFoundError{Resource: "petition"}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.counts.Invalidate(id)
	return nil
}

// CreateDecisionMakers batch-inserts contacts at petition creation time.
func (r *PetitionRepository) CreateDecisionMakers(ctx context.Context, petitionID string, dms []domain.DecisionMaker) ([]domain.DecisionMaker, error) {
	if len(dms) == 0 {
		return nil, nil
	}
	rows := make([]models.DecisionMaker, 0, len(dms))
	for _, dm := range dms {
		rows = append(rows, models.DecisionMaker{
			ID:         uuid.NewString(),
			PetitionID: petitionID,
			Name:       dm.Name,
			Title:      dm.Title,
			Email:      dm.Email,
		})
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.DecisionMaker, 0, len(rows))
	for _, row := range rows {
		out = append(out, decisionMakerToDomain(row))
	}
	return out, nil
}

func (r *PetitionRepository) ListDecisionMakers(ctx context.Context, petitionID string) ([]domain.DecisionMaker, error) {
	var rows []models.DecisionMaker
	err := r.db.WithContext(ctx).
		Where("petition_id = ?", petitionID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.DecisionMaker, 0, len(rows))
	for _, row := range rows {
		out = append(out, decisionMakerToDomain(row))
	}
	return out, nil
}

func petitionToDomain(m models.Petition) domain.Petition {
	return domain.Petition{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		Category:      m.Category,
		ImageURL:      m.ImageURL,
		SignatureGoal: m.SignatureGoal,
		CreatedByID:   m.CreatedByID,
		Status:        domain.PetitionStatus(m.Status),
		CreatedAt:     m.CreatedAt,
	}
}

func decisionMakerToDomain(m models.DecisionMaker) domain.DecisionMaker {
	return domain.DecisionMaker{
		ID:         m.ID,
		PetitionID: m.PetitionID,
		Name:       m.Name,
		Title:      m.Title,
		Email:      m.Email,
		CreatedAt:  m.CreatedAt,
	}
}
