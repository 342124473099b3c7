package service

import (
	"context"
	"errors"
	"time"

	"physionote/internal/model"
	"physionote/internal/repository"

	"github.com/rs/zerolog"
)

const (
	DefaultTrialDuration = 7 * 24 * time.Hour
	DefaultTrialQuota    = 5
)

// LedgerPolicy holds the platform-wide trial constants.
type LedgerPolicy struct {
	TrialDuration time.Duration
	// TrialQuota is the same for every plan; it does not follow the plan's monthly quota.
	TrialQuota int
	Now        func() time.Time
}

// SubscriptionLedger owns the subscription lifecycle and quota accounting.
//
// ReconcileExpiry must run before any check that depends on the current status:
// expiry of a trial is only written when a subscription is read.
type SubscriptionLedger interface {
	CreateTrial(ctx context.Context, userID, planID string) (*model.Subscription, error)
	// GetForUser returns nil, nil when the user has no subscription.
	GetForUser(ctx context.Context, userID string) (*model.Subscription, error)
	ReconcileExpiry(ctx context.Context, sub *model.Subscription) (*model.Subscription, error)
	CanConsume(sub *model.Subscription) bool
	// ConsumeOne charges one unit of quota. Call it only after the billable work has succeeded.
	ConsumeOne(ctx context.Context, sub *model.Subscription) (*model.Subscription, error)
}

type subscriptionLedger struct {
	subs   repository.SubscriptionRepository
	plans  repository.PlanRepository
	policy LedgerPolicy
	logger zerolog.Logger
}

// NewSubscriptionLedger creates a SubscriptionLedger with a scoped logger.
func NewSubscriptionLedger(subs repository.SubscriptionRepository, plans repository.PlanRepository, policy LedgerPolicy, logger zerolog.Logger) SubscriptionLedger {
	if policy.TrialDuration <= 0 {
		policy.TrialDuration = DefaultTrialDuration
	}
	if policy.TrialQuota <= 0 {
		policy.TrialQuota = DefaultTrialQuota
	}
	if policy.Now == nil {
		policy.Now = time.Now
	}
	return &subscriptionLedger{
		subs:   subs,
		plans:  plans,
		policy: policy,
		logger: logger.With().Str("service", "SubscriptionLedger").Logger(),
	}
}

func (l *subscriptionLedger) CreateTrial(ctx context.Context, userID, planID string) (*model.Subscription, error) {
	existing, err := l.subs.GetSubscriptionByUserID(ctx, userID)
	if err != nil {
		l.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to check existing subscription")
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadySubscribed
	}

	plan, err := l.plans.GetPlanByID(ctx, planID)
	if err != nil {
		l.logger.Error().Err(err).Str("plan_id", planID).Msg("Failed to fetch plan")
		return nil, err
	}
	if plan == nil || !plan.IsActive {
		return nil, ErrPlanUnavailable
	}

	now := l.policy.Now().UTC()
	trialEnds := now.Add(l.policy.TrialDuration)
	sub, err := l.subs.CreateSubscription(ctx, &model.Subscription{
		UserID:             userID,
		PlanID:             plan.ID,
		Status:             model.SubscriptionStatusTrial,
		QuotaRemaining:     l.policy.TrialQuota,
		QuotaTotal:         l.policy.TrialQuota,
		TrialEndsAt:        &trialEnds,
		CurrentPeriodStart: &now,
		CurrentPeriodEnd:   &trialEnds,
	})
	if errors.Is(err, repository.ErrSubscriptionExists) {
		return nil, ErrAlreadySubscribed
	}
	if err != nil {
		l.logger.Error().Err(err).Str("user_id", userID).Str("plan_id", planID).Msg("Failed to create trial subscription")
		return nil, err
	}

	l.logger.Info().Str("user_id", userID).Str("plan", plan.Name).Time("trial_ends_at", trialEnds).Msg("Trial subscription created")
	return sub, nil
}

func (l *subscriptionLedger) GetForUser(ctx context.Context, userID string) (*model.Subscription, error) {
	sub, err := l.subs.GetSubscriptionByUserID(ctx, userID)
	if err != nil {
		l.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch subscription")
		return nil, err
	}
	return sub, nil
}

func (l *subscriptionLedger) ReconcileExpiry(ctx context.Context, sub *model.Subscription) (*model.Subscription, error) {
	if sub == nil || !sub.TrialElapsed(l.policy.Now()) {
		return sub, nil
	}

	updated, err := l.subs.TransitionStatus(ctx, sub.ID, model.SubscriptionStatusTrial, model.SubscriptionStatusExpired)
	if err != nil {
		l.logger.Error().Err(err).Str("subscription_id", sub.ID).Msg("Failed to expire trial")
		return nil, err
	}
	if updated == nil {
		// Another request changed the status first; read what it wrote.
		return l.GetForUser(ctx, sub.UserID)
	}
	l.logger.Info().Str("user_id", sub.UserID).Str("subscription_id", sub.ID).Msg("Trial expired")
	return updated, nil
}

func (l *subscriptionLedger) CanConsume(sub *model.Subscription) bool {
	if sub == nil || sub.Status == model.SubscriptionStatusExpired {
		return false
	}
	if sub.TrialElapsed(l.policy.Now()) {
		return false
	}
	return sub.QuotaRemaining > 0
}

func (l *subscriptionLedger) ConsumeOne(ctx context.Context, sub *model.Subscription) (*model.Subscription, error) {
	if sub.QuotaRemaining <= 0 {
		return nil, quotaExceeded(sub)
	}
	updated, previous, err := l.subs.DecrementQuota(ctx, sub.UserID)
	if errors.Is(err, repository.ErrQuotaExhausted) {
		l.logger.Warn().Str("user_id", sub.UserID).Msg("Quota exhausted by a concurrent request")
		// The stored row has no quota left, whatever the caller's copy says.
		return nil, quotaExceeded(&model.Subscription{QuotaTotal: sub.QuotaTotal})
	}
	if err != nil {
		l.logger.Error().Err(err).Str("user_id", sub.UserID).Msg("Failed to decrement quota")
		return nil, err
	}
	l.logger.Debug().Str("user_id", sub.UserID).Int("previous", previous).Int("remaining", updated.QuotaRemaining).Msg("Quota consumed")
	return updated, nil
}

func quotaExceeded(sub *model.Subscription) error {
	return &EntitlementError{Kind: ErrQuotaExceeded, Used: sub.Used(), Limit: sub.QuotaTotal}
}

func trialExpired(sub *model.Subscription) error {
	return &EntitlementError{Kind: ErrTrialExpired, Used: sub.Used(), Limit: sub.QuotaTotal}
}
