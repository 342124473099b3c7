package service

import (
	"context"
	"time"

	"physionote/internal/identity"
	"physionote/internal/model"
	"physionote/internal/util"

	"github.com/rs/zerolog"
)

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

type AuthService interface {
	// LoginWithGoogle verifies a Google ID token and issues an API session token.
	LoginWithGoogle(ctx context.Context, idToken string) (*Session, error)
}

type authService struct {
	verifier  identity.Verifier
	users     UserService
	jwtSecret string
	ttl       time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

func NewAuthService(verifier identity.Verifier, users UserService, jwtSecret string, ttl time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		verifier:  verifier,
		users:     users,
		jwtSecret: jwtSecret,
		ttl:       ttl,
		now:       time.Now,
		logger:    logger.With().Str("service", "AuthService").Logger(),
	}
}

func (s *authService) LoginWithGoogle(ctx context.Context, idToken string) (*Session, error) {
	id, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Rejected Google ID token")
		return nil, err
	}
	u, err := s.users.GetOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	token, err := util.IssueJWT(u.ID, u.Email, s.jwtSecret, s.ttl, now)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", u.ID).Msg("Failed to issue session token")
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: now.Add(s.ttl), User: u}, nil
}
