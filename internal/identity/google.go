// Package identity verifies identities asserted by the external identity provider.
package identity

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

var (
	// ErrInvalidToken is returned when the ID token fails verification.
	ErrInvalidToken = errors.New("invalid identity token")
	// ErrEmailNotVerified is returned when the provider has not verified the email address.
	ErrEmailNotVerified = errors.New("email address is not verified")
)

// Identity is a verified principal asserted by the identity provider.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// Verifier checks a raw identity token and returns the principal it asserts.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleVerifier validates Google ID tokens against the OAuth client id.
type GoogleVerifier struct {
	clientID string
	validate validateFunc
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	if v.clientID == "" {
		return nil, errors.New("GOOGLE_CLIENT_ID is not configured")
	}
	payload, err := v.validate(ctx, rawToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id := &Identity{Subject: payload.Subject}
	id.Email, _ = payload.Claims["email"].(string)
	id.Name, _ = payload.Claims["name"].(string)
	id.Picture, _ = payload.Claims["picture"].(string)
	switch verified := payload.Claims["email_verified"].(type) {
	case bool:
		id.EmailVerified = verified
	case string:
		id.EmailVerified = verified == "true"
	}

	if id.Subject == "" || id.Email == "" {
		return nil, fmt.Errorf("%w: subject or email claim missing", ErrInvalidToken)
	}
	if !id.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	return id, nil
}
