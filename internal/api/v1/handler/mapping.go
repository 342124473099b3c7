package handler

import (
	"physionote/internal/api/v1/dto"
	"physionote/internal/model"
)

func toUserDTO(u *model.User) dto.UserResponseDTO {
	return dto.UserResponseDTO{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

func toPlanDTO(p model.Plan) dto.PlanResponseDTO {
	return dto.PlanResponseDTO{
		PlanID:              p.ID,
		Name:                p.Name,
		DisplayName:         p.DisplayName,
		PriceMonthly:        p.PriceMonthly,
		QuotaMonthly:        p.QuotaMonthly,
		MaxRecordingMinutes: p.MaxRecordingMinutes,
		MaxNotesRetention:   p.MaxNotesRetention,
	}
}

func toSubscriptionDTO(s *model.Subscription, canRecord bool) dto.SubscriptionResponseDTO {
	return dto.SubscriptionResponseDTO{
		SubscriptionID:     s.ID,
		PlanID:             s.PlanID,
		Status:             string(s.Status),
		QuotaRemaining:     s.QuotaRemaining,
		QuotaTotal:         s.QuotaTotal,
		QuotaUsed:          s.Used(),
		CanRecord:          canRecord,
		TrialEndsAt:        s.TrialEndsAt,
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		CreatedAt:          s.CreatedAt,
	}
}

func toRecordingDTO(r *model.Recording) dto.RecordingResponseDTO {
	return dto.RecordingResponseDTO{
		RecordingID:      r.ID,
		DurationSeconds:  r.DurationSeconds,
		LanguageDetected: r.LanguageDetected,
		Transcript:       r.Transcript,
		Status:           string(r.Status),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func toNoteDTO(n *model.Note) dto.NoteResponseDTO {
	return dto.NoteResponseDTO{
		NoteID:      n.ID,
		RecordingID: n.RecordingID,
		Subjective:  n.Subjective,
		Objective:   n.Objective,
		Assessment:  n.Assessment,
		Plan:        n.Plan,
		Language:    n.Language,
		Format:      n.Format,
		Verbosity:   n.Verbosity,
		CreatedAt:   n.CreatedAt,
	}
}
