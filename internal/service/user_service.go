package service

import (
	"context"
	"errors"

	"physionote/internal/identity"
	"physionote/internal/model"
	"physionote/internal/repository"

	"github.com/rs/zerolog"
)

var ErrEmailAlreadyRegistered = errors.New("email already registered")

type UserService interface {
	Get(ctx context.Context, id string) (*model.User, error)
	// GetOrCreate finds the user behind a verified identity, creating it on first login
	// and refreshing the display profile on later ones.
	GetOrCreate(ctx context.Context, id *identity.Identity) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "UserService").Logger(),
	}
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func sameOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *userService) GetOrCreate(ctx context.Context, id *identity.Identity) (*model.User, error) {
	name, avatar := optional(id.Name), optional(id.Picture)

	u, err := s.userRepo.GetUserByGoogleID(ctx, id.Subject)
	if err != nil {
		s.logger.Error().Err(err).Str("google_id", id.Subject).Msg("Failed to fetch user")
		return nil, err
	}
	if u != nil {
		if sameOptional(u.Name, name) && sameOptional(u.AvatarURL, avatar) {
			return u, nil
		}
		updated, err := s.userRepo.UpdateUserProfile(ctx, u.ID, name, avatar)
		if err != nil {
			s.logger.Error().Err(err).Str("user_id", u.ID).Msg("Failed to refresh user profile")
			return nil, err
		}
		return updated, nil
	}

	created, err := s.userRepo.CreateUser(ctx, &model.User{
		GoogleID:  id.Subject,
		Email:     id.Email,
		Name:      name,
		AvatarURL: avatar,
	})
	if errors.Is(err, repository.ErrUserExists) {
		return nil, ErrEmailAlreadyRegistered
	}
	if err != nil {
		s.logger.Error().Err(err).Str("google_id", id.Subject).Msg("Failed to create user")
		return nil, err
	}
	s.logger.Info().Str("user_id", created.ID).Msg("User created")
	return created, nil
}
