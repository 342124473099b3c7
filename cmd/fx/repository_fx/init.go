package repository_fx

import (
	"physionote/internal/repository"

	"go.uber.org/fx"
)

var Module = fx.Provide(
	repository.NewUserRepo,
	repository.NewPlanRepo,
	repository.NewSubscriptionRepo,
	repository.NewRecordingRepo,
	repository.NewNoteRepository,
	repository.NewTxManager,
)
