// Package handlers contains the gin handlers behind each page of the app:
// auth, dashboard, water logging, history, settings, tasks and weather.
package handlers

import (
	"go.uber.org/zap"

	"github.com/sarveshwaran777333/Water-buddy/config"
	"github.com/sarveshwaran777333/Water-buddy/services"
	"github.com/sarveshwaran777333/Water-buddy/session"
)

type Handlers struct {
	cfg       *config.Config
	repo      *services.Repository
	accounts  *services.AccountService
	hydration *services.HydrationService
	weather   services.WeatherProvider
	sessions  *session.Manager
	logger    *zap.Logger
}

func New(
	cfg *config.Config,
	repo *services.Repository,
	accounts *services.AccountService,
	hydration *services.HydrationService,
	weather services.WeatherProvider,
	sessions *session.Manager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		cfg:       cfg,
		repo:      repo,
		accounts:  accounts,
		hydration: hydration,
		weather:   weather,
		sessions:  sessions,
		logger:    logger,
	}
}
