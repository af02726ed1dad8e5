package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/civicsignal/petitiond/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func requireNonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.ValidationError{Field: field, Reason: "must not be empty"}
	}
	return nil
}

func requireMinLen(field, value string, min int) error {
	if len([]rune(value)) < min {
		return domain.ValidationError{Field: field, Reason: fmt.Sprintf("must be at least %d characters", min)}
	}
	return nil
}

func requireMaxLen(field, value string, max int) error {
	if len([]rune(value)) > max {
		return domain.ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %d characters", max)}
	}
	return nil
}

func requireEmail(field, value string) error {
	if !validEmail(value) {
		return domain.ValidationError{Field: field, Reason: "must be a valid email address"}
	}
	return nil
}

func requireGoal(goal int) error {
	if goal < domain.SignatureGoalMin || goal > domain.SignatureGoalMax {
		return domain.ValidationError{
			Field:  "signatureGoal",
			Reason: fmt.Sprintf("must be between %d and %d", domain.SignatureGoalMin, domain.SignatureGoalMax),
		}
	}
	return nil
}
