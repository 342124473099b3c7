package handler

import (
	"encoding/json"
	"net/http"

	"physionote/internal/api/v1/dto"
	"physionote/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// SubscriptionHandler handles subscription-related endpoints.
type SubscriptionHandler struct {
	ledger   service.SubscriptionLedger
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(ledger service.SubscriptionLedger, v *validator.Validate, logger zerolog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{ledger: ledger, validate: v, logger: logger.With().Str("handler", "SubscriptionHandler").Logger()}
}

// RegisterRoutes registers the subscription endpoints.
func (h *SubscriptionHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /subscriptions/trial", authMw(http.HandlerFunc(h.startTrial)))
	mux.Handle("GET /subscriptions/me", authMw(http.HandlerFunc(h.mySubscription)))
}

// startTrial godoc
// @Summary      Start a free trial
// @Description  Creates the user's trial subscription on an active plan. A user can hold only one subscription.
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        body  body      dto.TrialCreateDTO  true  "Plan to trial"
// @Success      201   {object}  dto.SubscriptionResponseDTO
// @Failure      400   {object}  dto.ErrorResponse  "validation error or SUBSCRIPTION_EXISTS"
// @Failure      404   {object}  dto.ErrorResponse  "PLAN_NOT_FOUND"
// @Security     BearerAuth
// @Router       /subscriptions/trial [post]
func (h *SubscriptionHandler) startTrial(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.TrialCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		validationFailed(w, err)
		return
	}

	sub, err := h.ledger.CreateTrial(r.Context(), userID, req.PlanID)
	if err != nil {
		writeError(w, requestLogger(r, h.logger), err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubscriptionDTO(sub, h.ledger.CanConsume(sub)))
}

// mySubscription godoc
// @Summary      Current subscription and quota
// @Tags         subscriptions
// @Produce      json
// @Success      200  {object}  dto.SubscriptionResponseDTO
// @Failure      403  {object}  dto.ErrorResponse  "NO_SUBSCRIPTION"
// @Security     BearerAuth
// @Router       /subscriptions/me [get]
func (h *SubscriptionHandler) mySubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	sub, err := h.ledger.GetForUser(r.Context(), userID)
	if err == nil && sub == nil {
		err = service.ErrNoActiveSubscription
	}
	if err == nil {
		sub, err = h.ledger.ReconcileExpiry(r.Context(), sub)
	}
	if err != nil {
		writeError(w, requestLogger(r, h.logger), err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscriptionDTO(sub, h.ledger.CanConsume(sub)))
}
