package user

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"dmchat/internal/pkg/logx"
)

// MaxNameLength caps user names so they stay usable as room keys and URL segments.
const MaxNameLength = 64

// Service implements registration and credential verification on top of a
// Repository. Secrets are bcrypt-hashed at registration and never stored or
// compared in plaintext.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:   repo,
		logger: logx.Logger().With().Str("component", "UserService").Logger(),
	}
}

// Register creates a new user with the given name and secret.
// Returns ErrInvalid for missing fields, ErrNameTaken when the name exists,
// and the stored User on success.
func (s *Service) Register(ctx context.Context, name, secret string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" || secret == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return nil, ErrInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{Name: name, PasswordHash: string(hash)}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info().Str("name", name).Msg("User registered")
	return u, nil
}

// Verify checks the secret against the stored hash for name.
// An unknown name and a wrong secret both yield ErrUnauthorized; repository
// failures other than a missing record propagate unchanged.
func (s *Service) Verify(ctx context.Context, name, secret string) (*User, error) {
	if name == "" || secret == "" {
		return nil, ErrInvalid
	}

	u, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(secret)); err != nil {
		return nil, ErrUnauthorized
	}

	return u, nil
}

// List returns summaries of all users, excluding the named caller when
// excluding is non-empty.
func (s *Service) List(ctx context.Context, excluding string) ([]Summary, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if excluding == "" {
		return all, nil
	}

	filtered := make([]Summary, 0, len(all))
	for _, u := range all {
		if u.Name != excluding {
			filtered = append(filtered, u)
		}
	}

	return filtered, nil
}
