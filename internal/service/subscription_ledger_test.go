package service_test

import (
	"context"
	"testing"
	"time"

	"physionote/internal/model"
	"physionote/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(store *memStore, clock *fixedClock) service.SubscriptionLedger {
	return service.NewSubscriptionLedger(store, store, service.LedgerPolicy{
		TrialDuration: 7 * 24 * time.Hour,
		TrialQuota:    5,
		Now:           clock.Now,
	}, zerolog.Nop())
}

func newClock() *fixedClock {
	return &fixedClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func TestCreateTrial(t *testing.T) {
	store := newMemStore()
	clock := newClock()
	plan := store.addPlan(model.Plan{Name: "pro", QuotaMonthly: 120, IsActive: true})
	ledger := newLedger(store, clock)

	sub, err := ledger.CreateTrial(context.Background(), "user-1", plan.ID)
	require.NoError(t, err)

	assert.Equal(t, model.SubscriptionStatusTrial, sub.Status)
	assert.Equal(t, 5, sub.QuotaRemaining)
	assert.Equal(t, 5, sub.QuotaTotal, "trial quota does not follow the plan's monthly quota")
	require.NotNil(t, sub.TrialEndsAt)
	assert.Equal(t, clock.Now().Add(7*24*time.Hour), *sub.TrialEndsAt)
	assert.True(t, ledger.CanConsume(sub))
}

func TestCreateTrialRejectsSecondSubscription(t *testing.T) {
	store := newMemStore()
	plan := store.addPlan(model.Plan{Name: "pro", IsActive: true})
	ledger := newLedger(store, newClock())

	_, err := ledger.CreateTrial(context.Background(), "user-1", plan.ID)
	require.NoError(t, err)

	_, err = ledger.CreateTrial(context.Background(), "user-1", plan.ID)
	assert.ErrorIs(t, err, service.ErrAlreadySubscribed)
}

func TestCreateTrialRequiresActivePlan(t *testing.T) {
	store := newMemStore()
	retired := store.addPlan(model.Plan{Name: "legacy", IsActive: false})
	ledger := newLedger(store, newClock())

	_, err := ledger.CreateTrial(context.Background(), "user-1", retired.ID)
	assert.ErrorIs(t, err, service.ErrPlanUnavailable)

	_, err = ledger.CreateTrial(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, service.ErrPlanUnavailable)

	sub, err := ledger.GetForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestReconcileExpiryExpiresElapsedTrialOnce(t *testing.T) {
	store := newMemStore()
	clock := newClock()
	plan := store.addPlan(model.Plan{Name: "pro", IsActive: true})
	ledger := newLedger(store, clock)
	ctx := context.Background()

	sub, err := ledger.CreateTrial(ctx, "user-1", plan.ID)
	require.NoError(t, err)

	clock.Advance(8 * 24 * time.Hour)
	assert.False(t, ledger.CanConsume(sub), "an elapsed trial cannot consume even before reconciliation")

	expired, err := ledger.ReconcileExpiry(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusExpired, expired.Status)
	assert.Equal(t, 5, expired.QuotaRemaining)

	again, err := ledger.ReconcileExpiry(ctx, expired)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusExpired, again.Status)

	// A stale copy still in trial re-reads the stored status.
	stale, err := ledger.ReconcileExpiry(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusExpired, stale.Status)
}

func TestReconcileExpiryLeavesRunningTrialAlone(t *testing.T) {
	store := newMemStore()
	clock := newClock()
	plan := store.addPlan(model.Plan{Name: "pro", IsActive: true})
	ledger := newLedger(store, clock)

	sub, err := ledger.CreateTrial(context.Background(), "user-1", plan.ID)
	require.NoError(t, err)

	clock.Advance(6 * 24 * time.Hour)
	got, err := ledger.ReconcileExpiry(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusTrial, got.Status)

	none, err := ledger.ReconcileExpiry(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestCanConsume(t *testing.T) {
	clock := newClock()
	ledger := newLedger(newMemStore(), clock)
	future := clock.Now().Add(time.Hour)
	past := clock.Now().Add(-time.Hour)

	cases := map[string]struct {
		sub  *model.Subscription
		want bool
	}{
		"nil":            {sub: nil, want: false},
		"trial":          {sub: &model.Subscription{Status: model.SubscriptionStatusTrial, QuotaRemaining: 1, TrialEndsAt: &future}, want: true},
		"trial elapsed":  {sub: &model.Subscription{Status: model.SubscriptionStatusTrial, QuotaRemaining: 1, TrialEndsAt: &past}, want: false},
		"active":         {sub: &model.Subscription{Status: model.SubscriptionStatusActive, QuotaRemaining: 3}, want: true},
		"active no left": {sub: &model.Subscription{Status: model.SubscriptionStatusActive, QuotaRemaining: 0}, want: false},
		"expired":        {sub: &model.Subscription{Status: model.SubscriptionStatusExpired, QuotaRemaining: 3}, want: false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ledger.CanConsume(tc.sub))
		})
	}
}

func TestConsumeOneStopsAtZero(t *testing.T) {
	store := newMemStore()
	plan := store.addPlan(model.Plan{Name: "pro", IsActive: true})
	ledger := newLedger(store, newClock())
	ctx := context.Background()

	sub, err := ledger.CreateTrial(ctx, "user-1", plan.ID)
	require.NoError(t, err)

	for i := 4; i >= 0; i-- {
		sub, err = ledger.ConsumeOne(ctx, sub)
		require.NoError(t, err)
		assert.Equal(t, i, sub.QuotaRemaining)
	}

	_, err = ledger.ConsumeOne(ctx, sub)
	var entErr *service.EntitlementError
	require.ErrorAs(t, err, &entErr)
	assert.ErrorIs(t, err, service.ErrQuotaExceeded)
	assert.Equal(t, 5, entErr.Used)
	assert.Equal(t, 5, entErr.Limit)
	assert.Equal(t, 0, store.subscription("user-1").QuotaRemaining)
}

func TestConsumeOneWithStaleSnapshotRespectsStoredQuota(t *testing.T) {
	store := newMemStore()
	sub := store.putSubscription(model.Subscription{
		UserID: "user-1", Status: model.SubscriptionStatusActive, QuotaRemaining: 0, QuotaTotal: 40,
	})
	ledger := newLedger(store, newClock())

	stale := sub
	stale.QuotaRemaining = 1
	_, err := ledger.ConsumeOne(context.Background(), &stale)
	var entErr *service.EntitlementError
	require.ErrorAs(t, err, &entErr)
	assert.ErrorIs(t, err, service.ErrQuotaExceeded)
	assert.Equal(t, 40, entErr.Used)
	assert.Equal(t, 40, entErr.Limit)
	assert.Equal(t, 0, store.subscription("user-1").QuotaRemaining)
}
