package dto

import "time"

type TrialCreateDTO struct {
	PlanID string `json:"plan_id" validate:"required,uuid"`
}

type SubscriptionResponseDTO struct {
	SubscriptionID     string     `json:"subscription_id"`
	PlanID             string     `json:"plan_id"`
	Status             string     `json:"status" example:"trial"`
	QuotaRemaining     int        `json:"quota_remaining" example:"5"`
	QuotaTotal         int        `json:"quota_total" example:"5"`
	QuotaUsed          int        `json:"quota_used" example:"0"`
	CanRecord          bool       `json:"can_record"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}
