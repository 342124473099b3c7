package repository

import (
	"context"
	"errors"
	"fmt"

	"physionote/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrSubscriptionExists is returned when the user already owns a subscription row.
	ErrSubscriptionExists = errors.New("subscription_exists")
	// ErrQuotaExhausted is returned when a conditional decrement finds no quota left.
	ErrQuotaExhausted = errors.New("quota_exhausted")
)

// SubscriptionRepository defines methods for accessing subscription data.
type SubscriptionRepository interface {
	// GetSubscriptionByUserID returns nil, nil when the user has no subscription.
	GetSubscriptionByUserID(ctx context.Context, userID string) (*model.Subscription, error)
	// CreateSubscription inserts s unless the user already has a row, in which case it returns ErrSubscriptionExists.
	CreateSubscription(ctx context.Context, s *model.Subscription) (*model.Subscription, error)
	// TransitionStatus moves the subscription from one status to another. It returns nil, nil
	// when the row is no longer in the from status.
	TransitionStatus(ctx context.Context, subscriptionID string, from, to model.SubscriptionStatus) (*model.Subscription, error)
	// DecrementQuota removes one unit of quota only if some remains and returns the updated row
	// together with the quota held before the decrement. It returns ErrQuotaExhausted otherwise.
	DecrementQuota(ctx context.Context, userID string) (*model.Subscription, int, error)
}

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepo creates a new SubscriptionRepository.
func NewSubscriptionRepo(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepo{pool: pool}
}

const subscriptionColumns = `id, user_id, plan_id, status, quota_remaining, quota_total,
        trial_ends_at, current_period_start, current_period_end,
        stripe_customer_id, stripe_subscription_id, created_at, updated_at`

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	var s model.Subscription
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.PlanID,
		&s.Status,
		&s.QuotaRemaining,
		&s.QuotaTotal,
		&s.TrialEndsAt,
		&s.CurrentPeriodStart,
		&s.CurrentPeriodEnd,
		&s.StripeCustomerID,
		&s.StripeSubscriptionID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *subscriptionRepo) GetSubscriptionByUserID(ctx context.Context, userID string) (*model.Subscription, error) {
	q := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1`
	s, err := scanSubscription(conn(ctx, r.pool).QueryRow(ctx, q, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch subscription for user %s: %w", userID, err)
	}
	return s, nil
}

func (r *subscriptionRepo) CreateSubscription(ctx context.Context, s *model.Subscription) (*model.Subscription, error) {
	q := `
        INSERT INTO subscriptions (user_id, plan_id, status, quota_remaining, quota_total,
                                   trial_ends_at, current_period_start, current_period_end)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (user_id) DO NOTHING
        RETURNING ` + subscriptionColumns
	created, err := scanSubscription(conn(ctx, r.pool).QueryRow(ctx, q,
		s.UserID,
		s.PlanID,
		s.Status,
		s.QuotaRemaining,
		s.QuotaTotal,
		s.TrialEndsAt,
		s.CurrentPeriodStart,
		s.CurrentPeriodEnd,
	))
	if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
		return nil, ErrSubscriptionExists
	}
	if err != nil {
		return nil, fmt.Errorf("create subscription for user %s: %w", s.UserID, err)
	}
	return created, nil
}

func (r *subscriptionRepo) TransitionStatus(ctx context.Context, subscriptionID string, from, to model.SubscriptionStatus) (*model.Subscription, error) {
	q := `
        UPDATE subscriptions
        SET status = $3, updated_at = NOW()
        WHERE id = $1 AND status = $2
        RETURNING ` + subscriptionColumns
	s, err := scanSubscription(conn(ctx, r.pool).QueryRow(ctx, q, subscriptionID, from, to))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("transition subscription %s from %s to %s: %w", subscriptionID, from, to, err)
	}
	return s, nil
}

func (r *subscriptionRepo) DecrementQuota(ctx context.Context, userID string) (*model.Subscription, int, error) {
	q := `
        UPDATE subscriptions
        SET quota_remaining = quota_remaining - 1, updated_at = NOW()
        WHERE user_id = $1 AND quota_remaining > 0
        RETURNING ` + subscriptionColumns
	s, err := scanSubscription(conn(ctx, r.pool).QueryRow(ctx, q, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, ErrQuotaExhausted
	}
	if err != nil {
		return nil, 0, fmt.Errorf("decrement quota for user %s: %w", userID, err)
	}
	return s, s.QuotaRemaining + 1, nil
}
