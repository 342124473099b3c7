package dto

type PlanResponseDTO struct {
	PlanID              string `json:"plan_id"`
	Name                string `json:"name" example:"starter"`
	DisplayName         string `json:"display_name" example:"Starter"`
	PriceMonthly        int    `json:"price_monthly" example:"2900"`
	QuotaMonthly        int    `json:"quota_monthly" example:"40"`
	MaxRecordingMinutes int    `json:"max_recording_minutes" example:"10"`
	MaxNotesRetention   int    `json:"max_notes_retention"`
}
