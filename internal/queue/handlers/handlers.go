package handlers

import (
	"log/slog"

	"github.com/monjez/monjez/internal/usecase"
)

type Handlers struct {
	usecase usecase.Usecase
	logger  *slog.Logger
}

func NewHandlers(uc usecase.Usecase, logger *slog.Logger) *Handlers {
	return &Handlers{
		usecase: uc,
		logger:  logger,
	}
}
