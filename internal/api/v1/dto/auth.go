package dto

import "time"

// GoogleLoginRequestDTO carries the ID token obtained by the client from Google Sign-In.
type GoogleLoginRequestDTO struct {
	IDToken string `json:"id_token" validate:"required"`
}

type AuthResponseDTO struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type" example:"Bearer"`
	ExpiresAt   time.Time       `json:"expires_at"`
	User        UserResponseDTO `json:"user"`
}

// UserResponseDTO is returned in API responses
type UserResponseDTO struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
