package usecase

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"github.com/civicsignal/petitiond/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockPetitionRepo struct {
	petitions map[string]domain.Petition
	deleted   []string
	dms       []domain.DecisionMaker
	dmErr     error
}

func newMockPetitionRepo(petitions ...domain.Petition) *mockPetitionRepo {
	m := &mockPetitionRepo{petitions: map[string]domain.Petition{}}
	for _, p := range petitions {
		m.petitions[p.ID] = p
	}
	return m
}

func (m *mockPetitionRepo) ListSummaries(ctx context.Context) ([]domain.PetitionSummary, error) {
	out := make([]domain.PetitionSummary, 0, len(m.petitions))
	for _, p := range m.petitions {
		out = append(out, domain.PetitionSummary{Petition: p})
	}
	return out, nil
}

func (m *mockPetitionRepo) Get(ctx context.Context, id string) (domain.Petition, error) {
	p, ok := m.petitions[id]
	if !ok {
		return domain.Petition{}, domain.NotFoundError{Resource: "petition"}
	}
	return p, nil
}

func (m *mockPetitionRepo) GetDetail(ctx context.Context, id string) (domain.PetitionDetail, error) {
	p, err := m.Get(ctx, id)
	if err != nil {
		return domain.PetitionDetail{}, err
	}
	return domain.PetitionDetail{Petition: p}, nil
}

func (m *mockPetitionRepo) Create(ctx context.Context, p domain.Petition) (domain.Petition, error) {
	p.ID = "petition-" + strconv.Itoa(len(m.petitions)+1)
	p.Status = domain.PetitionActive
	m.petitions[p.ID] = p
	return p, nil
}

func (m *mockPetitionRepo) Update(ctx context.Context, id string, upd domain.PetitionUpdate) (domain.Petition, error) {
	p, err := m.Get(ctx, id)
	if err != nil {
		return domain.Petition{}, err
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.ImageURL != nil {
		p.ImageURL = upd.ImageURL
	}
	if upd.SignatureGoal != nil {
		p.SignatureGoal = *upd.SignatureGoal
	}
	m.petitions[id] = p
	return p, nil
}

func (m *mockPetitionRepo) UpdateStatus(ctx context.Context, id string, status domain.PetitionStatus) (domain.Petition, error) {
	p, err := m.Get(ctx, id)
	if err != nil {
		return domain.Petition{}, err
	}
	p.Status = status
	m.petitions[id] = p
	return p, nil
}

func (m *mockPetitionRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.petitions[id]; !ok {
		return domain.NotFoundError{Resource: "petition"}
	}
	delete(m.petitions, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockPetitionRepo) CreateDecisionMakers(ctx context.Context, petitionID string, dms []domain.DecisionMaker) ([]domain.DecisionMaker, error) {
	if m.dmErr != nil {
		return nil, m.dmErr
	}
	for i := range dms {
		dms[i].PetitionID = petitionID
	}
	m.dms = append(m.dms, dms...)
	return dms, nil
}

func (m *mockPetitionRepo) ListDecisionMakers(ctx context.Context, petitionID string) ([]domain.DecisionMaker, error) {
	out := []domain.DecisionMaker{}
	for _, dm := range m.dms {
		if dm.PetitionID == petitionID {
			out = append(out, dm)
		}
	}
	return out, nil
}

type mockSignatureRepo struct {
	sigs      []domain.Signature
	deleted   []string
	createErr error
}

func (m *mockSignatureRepo) Create(ctx context.Context, sig domain.Signature) (domain.Signature, error) {
	if m.createErr != nil {
		return domain.Signature{}, m.createErr
	}
	sig.ID = "sig-" + strconv.Itoa(len(m.sigs)+1)
	m.sigs = append(m.sigs, sig)
	return sig, nil
}

func (m *mockSignatureRepo) Delete(ctx context.Context, id string) error {
	for i, s := range m.sigs {
		if s.ID == id {
			m.sigs = append(m.sigs[:i], m.sigs[i+1:]...)
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return domain.NotFoundError{Resource: "signature"}
}

func (m *mockSignatureRepo) Exists(ctx context.Context, petitionID, userID string) (bool, error) {
	for _, s := range m.sigs {
		if s.PetitionID == petitionID && s.UserID != nil && *s.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSignatureRepo) FindVerified(ctx context.Context, petitionID, userID string) (domain.Signature, error) {
	for _, s := range m.sigs {
		if s.PetitionID == petitionID && s.UserID != nil && *s.UserID == userID && s.Verified {
			return s, nil
		}
	}
	return domain.Signature{}, domain.NotFoundError{Resource: "signature"}
}

func (m *mockSignatureRepo) VerifyToken(ctx context.Context, token string) (domain.Signature, error) {
	for i, s := range m.sigs {
		if s.VerificationToken != nil && *s.VerificationToken == token {
			m.sigs[i].Verified = true
			m.sigs[i].VerificationToken = nil
			return m.sigs[i], nil
		}
	}
	return domain.Signature{}, domain.NotFoundError{Resource: "verification token"}
}

func (m *mockSignatureRepo) ListVerifiedByUser(ctx context.Context, userID string) ([]domain.Signature, error) {
	out := []domain.Signature{}
	for _, s := range m.sigs {
		if s.UserID != nil && *s.UserID == userID && s.Verified {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSignatureRepo) ListByPetition(ctx context.Context, petitionID string) ([]domain.Signature, error) {
	out := []domain.Signature{}
	for _, s := range m.sigs {
		if s.PetitionID == petitionID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSignatureRepo) ListVerifiedRecipients(ctx context.Context, petitionID string) ([]domain.Recipient, error) {
	out := []domain.Recipient{}
	for _, s := range m.sigs {
		if s.PetitionID == petitionID && s.Verified {
			out = append(out, domain.Recipient{Email: s.Email, FirstName: s.FirstName})
		}
	}
	return out, nil
}

type mockEngagementRepo struct {
	comments      []domain.Comment
	announcements []domain.Announcement
}

func (m *mockEngagementRepo) CreateComment(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	comment.ID = "comment-" + strconv.Itoa(len(m.comments)+1)
	m.comments = append(m.comments, comment)
	return comment, nil
}

func (m *mockEngagementRepo) ListComments(ctx context.Context, petitionID string) ([]domain.Comment, error) {
	return m.comments, nil
}

func (m *mockEngagementRepo) CreateAnnouncement(ctx context.Context, ann domain.Announcement) (domain.Announcement, error) {
	ann.ID = "announcement-" + strconv.Itoa(len(m.announcements)+1)
	m.announcements = append(m.announcements, ann)
	return ann, nil
}

func (m *mockEngagementRepo) ListAnnouncements(ctx context.Context, petitionID string) ([]domain.Announcement, error) {
	return m.announcements, nil
}

type mockUserReader struct {
	users map[string]domain.User
}

func (m *mockUserReader) GetByID(ctx context.Context, id string) (domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

type mockCaptcha struct {
	ok bool
}

func (m *mockCaptcha) Verify(ctx context.Context, token, remoteIP string) bool {
	return m.ok && token != ""
}

type mockNotifier struct {
	verificationErr error
	verifications   []string
	broadcasts      [][]domain.Recipient
	contactErr      error
	contacts        []domain.ContactMessage
}

func (m *mockNotifier) SendVerification(ctx context.Context, to, firstName, petitionTitle, token string) error {
	if m.verificationErr != nil {
		return m.verificationErr
	}
	m.verifications = append(m.verifications, to)
	return nil
}

func (m *mockNotifier) BroadcastAnnouncement(petition domain.Petition, announcementTitle string, recipients []domain.Recipient) {
	m.broadcasts = append(m.broadcasts, recipients)
}

func (m *mockNotifier) SendContact(ctx context.Context, organizer domain.User, petition domain.Petition, msg domain.ContactMessage) error {
	if m.contactErr != nil {
		return m.contactErr
	}
	m.contacts = append(m.contacts, msg)
	return nil
}

type mockEvents struct {
	published []string
}

func (m *mockEvents) Publish(ctx context.Context, eventType, petitionID string, body any) error {
	m.published = append(m.published, eventType)
	return nil
}
