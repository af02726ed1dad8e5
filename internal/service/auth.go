package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/civicsignal/petitiond/internal/domain"
)

var tracer = otel.Tracer("service")

// IdentityProvider exchanges an authorization code for a verified identity
// assertion at the external provider.
type IdentityProvider interface {
	ExchangeCode(ctx context.Context, code string) (domain.IdentityAssertion, error)
}

type UserRepository interface {
	GetByExternalID(ctx context.Context, externalID string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, assertion domain.IdentityAssertion) (domain.User, error)
}

type AuthService struct {
	provider IdentityProvider
	users    UserRepository
	secret   []byte
	sessions *gocache.Cache
}

func NewAuthService(provider IdentityProvider, users UserRepository, secret string) *AuthService {
	return &AuthService{
		provider: provider,
		users:    users,
		secret:   []byte(secret),
		sessions: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

type LoginResult struct {
	Token string
	User  domain.User
}

// Login exchanges an identity-provider authorization code for a local session
// token, creating the local user row on first sight of the external subject.
func (s *AuthService) Login(ctx context.Context, code string) (LoginResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Login")
	defer span.End()

	assertion, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		span.RecordError(err)
		return LoginResult{}, err
	}

	user, err := s.users.GetByExternalID(ctx, assertion.Subject)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			span.RecordError(err)
			return LoginResult{}, err
		}
		user, err = s.users.Create(ctx, assertion)
		if err != nil {
			span.RecordError(errors.Wrap(err, "failed to create user"))
			return LoginResult{}, err
		}
	}

	token, err := s.issueToken(user)
	if err != nil {
		span.RecordError(errors.Wrap(err, "failed to issue session token"))
		return LoginResult{}, err
	}

	return LoginResult{Token: token, User: user}, nil
}

// ValidateToken resolves a session token to its user. Results are cached
// briefly so every authenticated request does not hit the database.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (domain.User, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.ValidateToken")
	defer span.End()

	if cached, ok := s.sessions.Get(token); ok {
		return cached.(domain.User), nil
	}

	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		span.RecordError(err)
		return domain.User{}, domain.ErrAuthenticationRequired
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrAuthenticationRequired
		}
		span.RecordError(err)
		return domain.User{}, err
	}

	s.sessions.Set(token, user, gocache.DefaultExpiration)
	return user, nil
}

func (s *AuthService) issueToken(user domain.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
