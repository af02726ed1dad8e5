package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/civicsignal/petitiond/internal/domain"
)

func newEngagementUsecase(petitions *mockPetitionRepo, sigs *mockSignatureRepo, notifier *mockNotifier, events *mockEvents) (*EngagementUsecase, *mockEngagementRepo) {
	repo := &mockEngagementRepo{}
	eligibility := NewSignatureUsecase(sigs, petitions, &mockCaptcha{ok: true}, &mockNotifier{}, &mockEvents{}, testLogger())
	return NewEngagementUsecase(repo, petitions, sigs, eligibility, notifier, events, testLogger()), repo
}

func TestCreateCommentSnapshotsSignerName(t *testing.T) {
	petitions := newMockPetitionRepo(domain.Petition{ID: "p1", Status: domain.PetitionActive})
	userID := "u1"
	sigs := &mockSignatureRepo{sigs: []domain.Signature{{
		ID:         "sig-1",
		PetitionID: "p1",
		UserID:     &userID,
		FirstName:  "Alice",
		LastName:   "Anderson",
		Verified:   true,
	}}}
	uc, repo := newEngagementUsecase(petitions, sigs, &mockNotifier{}, &mockEvents{})

	comment, err := uc.CreateComment(context.Background(), "p1", domain.User{ID: "u1", Name: "Renamed User"}, "Fully behind this.")
	if err != nil {
		t.Fatalf("create comment failed: %v", err)
	}
	if comment.FirstName != "Alice" || comment.LastName != "Anderson" {
		t.Fatalf("expected name snapshot from signature, got %s %s", comment.FirstName, comment.LastName)
	}
	if comment.SignatureID == nil || *comment.SignatureID != "sig-1" {
		t.Fatalf("expected back-reference to the authorizing signature")
	}
	if len(repo.comments) != 1 {
		t.Fatalf("expected one stored comment")
	}
}

func TestCreateCommentRequiresVerifiedSignatureOnSamePetition(t *testing.T) {
	userID := "u1"
	petitions := newMockPetitionRepo(
		domain.Petition{ID: "p1", Status: domain.PetitionActive},
		domain.Petition{ID: "p2", Status: domain.PetitionActive},
	)
	sigs := &mockSignatureRepo{sigs: []domain.Signature{
		// unverified on the target petition
		{ID: "sig-1", PetitionID: "p1", UserID: &userID, Verified: false},
		// verified, but on a different petition
		{ID: "sig-2", PetitionID: "p2", UserID: &userID, Verified: true},
	}}
	uc, _ := newEngagementUsecase(petitions, sigs, &mockNotifier{}, &mockEvents{})

	_, err := uc.CreateComment(context.Background(), "p1", domain.User{ID: "u1"}, "Fully behind this.")
	if !errors.Is(err, domain.ErrAuthorizationDenied) {
		t.Fatalf("expected authorization denied, got %v", err)
	}
}

func TestCreateAnnouncementRequiresCreator(t *testing.T) {
	petitions := newMockPetitionRepo(domain.Petition{ID: "p1", CreatedByID: "owner", Status: domain.PetitionActive})
	uc, _ := newEngagementUsecase(petitions, &mockSignatureRepo{}, &mockNotifier{}, &mockEvents{})

	_, err := uc.CreateAnnouncement(context.Background(), "p1", domain.User{ID: "intruder"}, CreateAnnouncementInput{
		Title:   "Milestone",
		Content: "We reached 500 signatures!",
	})
	if !errors.Is(err, domain.ErrAuthorizationDenied) {
		t.Fatalf("expected authorization denied, got %v", err)
	}
}

func TestCreateAnnouncementFansOutToVerifiedSignersOnly(t *testing.T) {
	petitions := newMockPetitionRepo(domain.Petition{ID: "p1", CreatedByID: "owner", Status: domain.PetitionActive})
	sigs := &mockSignatureRepo{sigs: []domain.Signature{
		{ID: "sig-1", PetitionID: "p1", Email: "a@example.com", Verified: true},
		{ID: "sig-2", PetitionID: "p1", Email: "b@example.com", Verified: true},
		{ID: "sig-3", PetitionID: "p1", Email: "c@example.com", Verified: true},
		{ID: "sig-4", PetitionID: "p1", Email: "d@example.com", Verified: false},
		{ID: "sig-5", PetitionID: "p1", Email: "e@example.com", Verified: false},
	}}
	notifier := &mockNotifier{}
	events := &mockEvents{}
	uc, _ := newEngagementUsecase(petitions, sigs, notifier, events)

	_, err := uc.CreateAnnouncement(context.Background(), "p1", domain.User{ID: "owner"}, CreateAnnouncementInput{
		Title:   "Milestone",
		Content: "We reached 500 signatures!",
	})
	if err != nil {
		t.Fatalf("create announcement failed: %v", err)
	}

	if len(notifier.broadcasts) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(notifier.broadcasts))
	}
	if len(notifier.broadcasts[0]) != 3 {
		t.Fatalf("expected 3 verified recipients, got %d", len(notifier.broadcasts[0]))
	}
	for _, r := range notifier.broadcasts[0] {
		if r.Email == "d@example.com" || r.Email == "e@example.com" {
			t.Fatalf("unverified signer %s must not receive announcements", r.Email)
		}
	}
	if len(events.published) != 1 || events.published[0] != domain.EventAnnouncementCreated {
		t.Fatalf("expected an announcement event, got %v", events.published)
	}
}

func TestListCommentsRequiresExistingPetition(t *testing.T) {
	uc, _ := newEngagementUsecase(newMockPetitionRepo(), &mockSignatureRepo{}, &mockNotifier{}, &mockEvents{})

	_, err := uc.ListComments(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
