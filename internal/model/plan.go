package model

import "time"

// Plan is an administrator-managed offer. Only active plans can back a new subscription.
type Plan struct {
	ID                  string    `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	DisplayName         string    `db:"display_name" json:"display_name"`
	PriceMonthly        int       `db:"price_monthly" json:"price_monthly"` // minor currency units
	QuotaMonthly        int       `db:"quota_monthly" json:"quota_monthly"`
	MaxRecordingMinutes int       `db:"max_recording_minutes" json:"max_recording_minutes"`
	MaxNotesRetention   int       `db:"max_notes_retention" json:"max_notes_retention"`
	IsActive            bool      `db:"is_active" json:"is_active"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// MaxRecordingSeconds returns the plan's duration cap, or 0 when the plan sets none.
func (p *Plan) MaxRecordingSeconds() int {
	if p == nil || p.MaxRecordingMinutes <= 0 {
		return 0
	}
	return p.MaxRecordingMinutes * 60
}
