package http

import (
	"time"

	"github.com/mkarpushin/store-identity/internal/config"
	"github.com/mkarpushin/store-identity/internal/logger"
	"github.com/mkarpushin/store-identity/internal/service"
)

// Handler owns the HTTP surface of the identity service. It delegates all
// business decisions to the service layer and only shapes requests and
// responses.
type Handler struct {
	services *service.Services

	// accessTokenDuration feeds the expiresIn field of token responses.
	accessTokenDuration time.Duration

	// production hides the development-only endpoints.
	production bool

	version string

	logger *logger.Logger
}

// NewHandler constructs the HTTP handler from the service aggregate and the
// application configuration.
func NewHandler(services *service.Services, cfg config.StructuredConfig, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:            services,
		accessTokenDuration: cfg.Auth.AccessTokenDuration,
		production:          cfg.IsProduction(),
		version:             cfg.Version,
		logger:              logger,
	}
}
