package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"physionote/internal/api/v1/dto"
	"physionote/internal/identity"
	"physionote/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	authService service.AuthService
	userService service.UserService
	validate    *validator.Validate
	logger      zerolog.Logger
}

func NewAuthHandler(authService service.AuthService, userService service.UserService, v *validator.Validate, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		validate:    v,
		logger:      logger.With().Str("handler", "AuthHandler").Logger(),
	}
}

// RegisterRoutes mounts v1 auth routes
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /auth/google", h.googleLogin)
	mux.Handle("GET /auth/me", authMw(http.HandlerFunc(h.me)))
}

// googleLogin godoc
// @Summary      Sign in with Google
// @Description  Verifies a Google ID token, creates the user on first login and returns an API access token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.GoogleLoginRequestDTO  true  "Google ID token"
// @Success      200   {object}  dto.AuthResponseDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /auth/google [post]
func (h *AuthHandler) googleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.GoogleLoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		validationFailed(w, err)
		return
	}

	session, err := h.authService.LoginWithGoogle(r.Context(), req.IDToken)
	if errors.Is(err, identity.ErrInvalidToken) || errors.Is(err, identity.ErrEmailNotVerified) {
		writeErrorBody(w, http.StatusUnauthorized, dto.CodeUnauthorized, err.Error(), nil)
		return
	}
	if err != nil {
		writeError(w, requestLogger(r, h.logger), err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthResponseDTO{
		AccessToken: session.Token,
		TokenType:   "Bearer",
		ExpiresAt:   session.ExpiresAt,
		User:        toUserDTO(session.User),
	})
}

// me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.UserResponseDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		writeError(w, requestLogger(r, h.logger), err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}
