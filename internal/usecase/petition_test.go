package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/civicsignal/petitiond/internal/domain"
)

func newPetitionUsecase(petitions *mockPetitionRepo, captcha *mockCaptcha, notifier *mockNotifier, events *mockEvents) *PetitionUsecase {
	users := &mockUserReader{users: map[string]domain.User{
		"owner": {ID: "owner", Name: "Olivia Organizer", Email: "olivia@example.com"},
	}}
	return NewPetitionUsecase(petitions, users, captcha, notifier, events, testLogger())
}

func validCreateInput() CreatePetitionInput {
	return CreatePetitionInput{
		Title:         "Save the wetlands",
		Description:   "The wetlands host rare migratory birds and must be protected.",
		Category:      "environment",
		SignatureGoal: 500,
	}
}

func TestCreatePetitionForcesActiveStatus(t *testing.T) {
	petitions := newMockPetitionRepo()
	uc := newPetitionUsecase(petitions, &mockCaptcha{ok: true}, &mockNotifier{}, &mockEvents{})

	created, err := uc.Create(context.Background(), validCreateInput(), domain.User{ID: "owner"}, "token", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Status != domain.PetitionActive {
		t.Fatalf("expected active status, got %s", created.Status)
	}
	if created.CreatedByID != "owner" {
		t.Fatalf("expected creator to be owner, got %s", created.CreatedByID)
	}
}

func TestCreatePetitionRequiresCaptcha(t *testing.T) {
	uc := newPetitionUsecase(newMockPetitionRepo(), &mockCaptcha{ok: false}, &mockNotifier{}, &mockEvents{})

	_, err := uc.Create(context.Background(), validCreateInput(), domain.User{ID: "owner"}, "token", "")
	if !errors.Is(err, domain.ErrCaptchaFailed) {
		t.Fatalf("expected captcha failure, got %v", err)
	}
}

func TestCreatePetitionValidatesBounds(t *testing.T) {
	uc := newPetitionUsecase(newMockPetitionRepo(), &mockCaptcha{ok: true}, &mockNotifier{}, &mockEvents{})

	cases := []struct {
		name   string
		mutate func(*CreatePetitionInput)
	}{
		{"short title", func(in *CreatePetitionInput) { in.Title = "Save" }},
		{"short description", func(in *CreatePetitionInput) { in.Description = "too short" }},
		{"goal below minimum", func(in *CreatePetitionInput) { in.SignatureGoal = 5 }},
		{"goal above maximum", func(in *CreatePetitionInput) { in.SignatureGoal = 2_000_000 }},
		{"empty category", func(in *CreatePetitionInput) { in.Category = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput()
			tc.mutate(&input)
			_, err := uc.Create(context.Background(), input, domain.User{ID: "owner"}, "token", "")
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreatePetitionSurvivesDecisionMakerFailure(t *testing.T) {
	petitions := newMockPetitionRepo()
	petitions.dmErr = errors.New("insert failed")
	uc := newPetitionUsecase(petitions, &mockCaptcha{ok: true}, &mockNotifier{}, &mockEvents{})

	input := validCreateInput()
	input.DecisionMakers = []DecisionMakerInput{{Name: "Mayor", Email: "mayor@example.com"}}

	created, err := uc.Create(context.Background(), input, domain.User{ID: "owner"}, "token", "")
	if err != nil {
		t.Fatalf("expected petition creation to survive decision maker failure, got %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected a created petition")
	}
}

func TestUpdatePetitionRequiresCreator(t *testing.T) {
	petitions := newMockPetitionRepo(domain.Petition{ID: "p1", CreatedByID: "owner", Status: domain.PetitionActive})
	uc := newPetitionUsecase(petitions, &mockCaptcha{ok: true}, &mockNotifier{}, &mockEvents{})

	title := "A much better title"
	_, err := uc.Update(context.Background(), "p1", domain.User{ID: "intruder"}, domain.PetitionUpdate{Title: &title})
	if !errors.Is(err, domain.ErrAuthorizationDenied) {
		t.Fatalf("expected authorization denied, got %v", err)
	}

	updated, err := uc.Update(context.Background(), "p1", domain.User{ID: "owner"}, domain.PetitionUpdate{Title: &title})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("expected updated title, got %q", updated.Title)
	}
}

func TestUpdatePetitionValidatesFields(t *testing.T) {
	petitions := newMockPetitionRepo(domain.Petition{ID: "p1", CreatedByID: "owner", Status: domain.PetitionActive, Category: "environment"})
	uc := newPetitionUsecase(petitions, &mockCaptcha{ok: true}, &mockNotifier{}, &mockEvents{})
	owner := domain.User{ID: "owner"}

	short := "tiny"
	blank := "   "
	badGoal := 0

	cases := []struct {
		name string
		upd  domain.PetitionUpdate
	}{
		{"short title", domain.PetitionUpdate{Title: &short}},
		{"short description", domain.PetitionUpdate{Description: &short}},
		{"blank category", domain.PetitionUpdate{Category: &blank}},
		{"goal out of range", domain.PetitionUpdate{SignatureGoal: &badGoal}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var verr domain.ValidationError
			_, err := uc.Update(context.Background(), "p1", owner, tc.upd)
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	category := "health"
	updated, err := uc.Update(context.Background(), "p1", owner, domain.PetitionUpdate{Category: &category})
	if err != nil {
		t.Fatalf("category update failed: %v", err)
	}
	if updated.Category != category {
		t.Fatalf("expected updated category, got %q", updated.Category)
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    domain.PetitionStatus
		to      domain.PetitionStatus
		wantErr error
	}{
		{"active to closed", domain.PetitionActive, domain.PetitionClosed, nil},
		{"active to successful", domain.PetitionActive, domain.PetitionSuccessful, nil},
		{"closed to active", domain.PetitionClosed, domain.PetitionActive, domain.ErrInvalidTransition},
		{"successful to closed", domain.PetitionSuccessful, domain.PetitionClosed, domain.ErrInvalidTransition},
		{"active to active", domain.PetitionActive, domain.PetitionActive, domain.ErrInvalidTransition},
		{"closed to closed", domain.PetitionClosed, domain.PetitionClosed, domain.ErrInvalidTransition},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			petitions := newMockPetitionRepo(domain.Petition{ID: "p1", CreatedByID: "owner", Status: tc.from})
			events := &mockEvents{}
			uc := newPetitionUsecase(petitions, &mockCaptcha{ok: true}, &mockNotifier{}, events)

			updated, err := uc.UpdateStatus(context.Background(), "p1", domain.User{ID: "owner"}, tc.to)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("transition failed: %v", err)
			}
			if updated.Status != tc.to {
				t.Fatalf("expected status %s, got %s", tc.to, updated.Status)
			}
			if len(events.published) != 1 || events.published[0] != domain.EventStatusChanged {
				t.Fatalf("expected a status change event, got %v", events.published)
			}
		})
	}
}

func TestDeletePetitionRequiresCreator(t *testing.T) {
	petitions := newMockPetitionRepo(domain.Petition{ID: "p1", CreatedByID: "owner", Status: domain.PetitionActive})
	uc := newPetitionUsecase(petitions, &mockCaptcha{ok: true}, &mockNotifier{}, &mockEvents{})

	if err := uc.Delete(context.Background(), "p1", domain.User{ID: "intruder"}); !errors.Is(err, domain.ErrAuthorizationDenied) {
		t.Fatalf("expected authorization denied, got %v", err)
	}

	if err := uc.Delete(context.Background(), "p1", domain.User{ID: "owner"}); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if len(petitions.deleted) != 1 {
		t.Fatalf("expected delete to reach the store")
	}
}

func validContactMessage() domain.ContactMessage {
	return domain.ContactMessage{
		FirstName: "Sam",
		LastName:  "Supporter",
		Email:     "sam@example.com",
		Message:   "I would love to help organize a local event for this cause.",
	}
}

func TestContactOrganizerDeliversToCreator(t *testing.T) {
	petitions := newMockPetitionRepo(domain.Petition{ID: "p1", CreatedByID: "owner", Status: domain.PetitionActive})
	notifier := &mockNotifier{}
	uc := newPetitionUsecase(petitions, &mockCaptcha{ok: true}, notifier, &mockEvents{})

	if err := uc.ContactOrganizer(context.Background(), "p1", validContactMessage(), "token", ""); err != nil {
		t.Fatalf("contact failed: %v", err)
	}
	if len(notifier.contacts) != 1 {
		t.Fatalf("expected one contact email, got %d", len(notifier.contacts))
	}
}

func TestContactOrganizerValidatesMessage(t *testing.T) {
	petitions := newMockPetitionRepo(domain.Petition{ID: "p1", CreatedByID: "owner", Status: domain.PetitionActive})
	uc := newPetitionUsecase(petitions, &mockCaptcha{ok: true}, &mockNotifier{}, &mockEvents{})

	cases := []struct {
		name   string
		mutate func(*domain.ContactMessage)
	}{
		{"short message", func(m *domain.ContactMessage) { m.Message = "too short" }},
		{"long message", func(m *domain.ContactMessage) { m.Message = strings.Repeat("x", 5001) }},
		{"bad email", func(m *domain.ContactMessage) { m.Email = "not-an-email" }},
		{"long phone", func(m *domain.ContactMessage) { m.Phone = strings.Repeat("1", 21) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := validContactMessage()
			tc.mutate(&msg)
			err := uc.ContactOrganizer(context.Background(), "p1", msg, "token", "")
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestContactOrganizerSurfacesDeliveryFailure(t *testing.T) {
	petitions := newMockPetitionRepo(domain.Petition{ID: "p1", CreatedByID: "owner", Status: domain.PetitionActive})
	notifier := &mockNotifier{contactErr: errors.New("mail provider down")}
	uc := newPetitionUsecase(petitions, &mockCaptcha{ok: true}, notifier, &mockEvents{})

	err := uc.ContactOrganizer(context.Background(), "p1", validContactMessage(), "token", "")
	if !errors.Is(err, domain.ErrDependency) {
		t.Fatalf("expected dependency failure, got %v", err)
	}
}
