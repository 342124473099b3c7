package handler

import (
	"net/http"

	"physionote/internal/api/v1/dto"
	"physionote/internal/service"

	"github.com/rs/zerolog"
)

type PlanHandler struct {
	planService service.PlanService
	logger      zerolog.Logger
}

func NewPlanHandler(planService service.PlanService, logger zerolog.Logger) *PlanHandler {
	return &PlanHandler{planService: planService, logger: logger.With().Str("handler", "PlanHandler").Logger()}
}

// RegisterRoutes mounts the public plan catalogue.
func (h *PlanHandler) RegisterRoutes(mux *http.ServeMux, _ func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /plans", h.listPlans)
	mux.HandleFunc("GET /plans/{id}", h.getPlan)
}

// listPlans godoc
// @Summary      List active plans
// @Tags         plans
// @Produce      json
// @Success      200  {array}   dto.PlanResponseDTO
// @Router       /plans [get]
func (h *PlanHandler) listPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.planService.ListPlans(r.Context())
	if err != nil {
		writeError(w, requestLogger(r, h.logger), err)
		return
	}
	resp := make([]dto.PlanResponseDTO, 0, len(plans))
	for _, p := range plans {
		resp = append(resp, toPlanDTO(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// getPlan godoc
// @Summary      Get an active plan
// @Tags         plans
// @Produce      json
// @Param        id   path      string  true  "Plan ID"
// @Success      200  {object}  dto.PlanResponseDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /plans/{id} [get]
func (h *PlanHandler) getPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, dto.CodePlanNotFound)
	if !ok {
		return
	}
	plan, err := h.planService.GetPlan(r.Context(), id)
	if err != nil {
		writeError(w, requestLogger(r, h.logger), err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(*plan))
}
