package model

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusTrial     SubscriptionStatus = "trial"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// CanTransitionTo reports whether moving from s to next respects the lifecycle:
// trial may become active, cancelled or expired; active and cancelled may expire;
// nothing leaves expired and nothing re-enters trial.
func (s SubscriptionStatus) CanTransitionTo(next SubscriptionStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case SubscriptionStatusTrial:
		return next == SubscriptionStatusActive || next == SubscriptionStatusCancelled || next == SubscriptionStatusExpired
	case SubscriptionStatusActive:
		return next == SubscriptionStatusCancelled || next == SubscriptionStatusExpired
	case SubscriptionStatusCancelled:
		return next == SubscriptionStatusExpired
	default:
		return false
	}
}

// Subscription is the per-user quota ledger row.
type Subscription struct {
	ID                   string             `db:"id" json:"id"`
	UserID               string             `db:"user_id" json:"user_id"`
	PlanID               string             `db:"plan_id" json:"plan_id"`
	Status               SubscriptionStatus `db:"status" json:"status"`
	QuotaRemaining       int                `db:"quota_remaining" json:"quota_remaining"`
	QuotaTotal           int                `db:"quota_total" json:"quota_total"`
	TrialEndsAt          *time.Time         `db:"trial_ends_at" json:"trial_ends_at,omitempty"`
	CurrentPeriodStart   *time.Time         `db:"current_period_start" json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time         `db:"current_period_end" json:"current_period_end,omitempty"`
	StripeCustomerID     *string            `db:"stripe_customer_id" json:"-"`
	StripeSubscriptionID *string            `db:"stripe_subscription_id" json:"-"`
	CreatedAt            time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time          `db:"updated_at" json:"updated_at"`
}

// Used returns how many units of the allotment have been consumed.
func (s *Subscription) Used() int {
	return s.QuotaTotal - s.QuotaRemaining
}

// TrialElapsed reports whether the trial window is over at now, regardless of the stored status.
func (s *Subscription) TrialElapsed(now time.Time) bool {
	return s.Status == SubscriptionStatusTrial && s.TrialEndsAt != nil && now.After(*s.TrialEndsAt)
}
