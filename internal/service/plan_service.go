package service

import (
	"context"

	"physionote/internal/model"
	"physionote/internal/repository"

	"github.com/rs/zerolog"
)

type PlanService interface {
	ListPlans(ctx context.Context) ([]model.Plan, error)
	// GetPlan returns ErrPlanNotFound for unknown and inactive plans alike.
	GetPlan(ctx context.Context, planID string) (*model.Plan, error)
}

type planService struct {
	repo   repository.PlanRepository
	logger zerolog.Logger
}

func NewPlanService(repo repository.PlanRepository, logger zerolog.Logger) PlanService {
	return &planService{
		repo:   repo,
		logger: logger.With().Str("service", "PlanService").Logger(),
	}
}

func (s *planService) ListPlans(ctx context.Context) ([]model.Plan, error) {
	plans, err := s.repo.ListActivePlans(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list plans")
		return nil, err
	}
	return plans, nil
}

func (s *planService) GetPlan(ctx context.Context, planID string) (*model.Plan, error) {
	plan, err := s.repo.GetPlanByID(ctx, planID)
	if err != nil {
		s.logger.Error().Err(err).Str("plan_id", planID).Msg("Failed to fetch plan")
		return nil, err
	}
	if plan == nil || !plan.IsActive {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}
