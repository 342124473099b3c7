package repository

import (
	"context"
	"errors"
	"fmt"

	"physionote/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlanRepository reads subscription plans.
type PlanRepository interface {
	// ListActivePlans returns active plans ordered by monthly price, cheapest first.
	ListActivePlans(ctx context.Context) ([]model.Plan, error)
	// GetPlanByID returns nil, nil when no plan has the id, whatever its active flag.
	GetPlanByID(ctx context.Context, planID string) (*model.Plan, error)
}

type planRepo struct {
	pool *pgxpool.Pool
}

func NewPlanRepo(pool *pgxpool.Pool) PlanRepository {
	return &planRepo{pool: pool}
}

const planColumns = `id, name, display_name, price_monthly, quota_monthly,
        max_recording_minutes, max_notes_retention, is_active, created_at, updated_at`

func scanPlan(row pgx.Row) (*model.Plan, error) {
	var p model.Plan
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.DisplayName,
		&p.PriceMonthly,
		&p.QuotaMonthly,
		&p.MaxRecordingMinutes,
		&p.MaxNotesRetention,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *planRepo) ListActivePlans(ctx context.Context) ([]model.Plan, error) {
	q := `SELECT ` + planColumns + ` FROM plans WHERE is_active = TRUE ORDER BY price_monthly ASC, name ASC`
	rows, err := conn(ctx, r.pool).Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list active plans: %w", err)
	}
	defer rows.Close()

	var plans []model.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return plans, nil
}

func (r *planRepo) GetPlanByID(ctx context.Context, planID string) (*model.Plan, error) {
	q := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	p, err := scanPlan(conn(ctx, r.pool).QueryRow(ctx, q, planID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch plan %s: %w", planID, err)
	}
	return p, nil
}
