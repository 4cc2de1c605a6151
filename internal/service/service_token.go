package service

import (
	"fmt"
	"time"

	"github.com/mkarpushin/store-identity/internal/config"
	"github.com/mkarpushin/store-identity/internal/logger"
	"github.com/mkarpushin/store-identity/internal/utils"
	"github.com/mkarpushin/store-identity/models"
)

// tokenService is the concrete implementation of [TokenService]. It is
// stateless apart from its configuration and safe for concurrent use.
type tokenService struct {
	// accessSignKey and refreshSignKey are distinct HMAC secrets; a leaked
	// refresh secret must not be able to forge access tokens.
	accessSignKey  string
	refreshSignKey string

	tokenIssuer   string
	tokenAudience string

	accessDuration  time.Duration
	refreshDuration time.Duration

	logger *logger.Logger
}

// NewTokenService constructs a [TokenService] from the auth configuration.
func NewTokenService(cfg config.Auth, logger *logger.Logger) TokenService {
	return &tokenService{
		accessSignKey:   cfg.AccessTokenSignKey,
		refreshSignKey:  cfg.RefreshTokenSignKey,
		tokenIssuer:     cfg.TokenIssuer,
		tokenAudience:   cfg.TokenAudience,
		accessDuration:  cfg.AccessTokenDuration,
		refreshDuration: cfg.RefreshTokenDuration,
		logger:          logger,
	}
}

// IssueAccessToken mints a short-lived token authorizing API calls.
func (t *tokenService) IssueAccessToken(user models.User) (models.Token, error) {
	token, err := utils.GenerateJWTToken(user, t.tokenIssuer, t.tokenAudience, t.accessDuration, t.accessSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("error issuing access token: %w", err)
	}

	return token, nil
}

// IssueRefreshToken mints a long-lived token usable only to obtain new
// access tokens.
func (t *tokenService) IssueRefreshToken(user models.User) (models.Token, error) {
	token, err := utils.GenerateJWTToken(user, t.tokenIssuer, t.tokenAudience, t.refreshDuration, t.refreshSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("error issuing refresh token: %w", err)
	}

	return token, nil
}

// Parse validates signature, expiry, issuer and audience against the
// secret for the given kind. Any validation failure is normalised to
// [ErrTokenIsExpiredOrInvalid] so callers never inspect low-level JWT
// errors.
func (t *tokenService) Parse(tokenString string, kind models.TokenKind) (models.Token, error) {
	key := t.accessSignKey
	if kind == models.TokenKindRefresh {
		key = t.refreshSignKey
	}

	token, err := utils.ValidateAndParseJWTToken(tokenString, key, t.tokenIssuer, t.tokenAudience)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}

// Verify is the forgiving form of [tokenService.Parse]: nil claims on any
// failure.
func (t *tokenService) Verify(tokenString string, kind models.TokenKind) *models.TokenClaims {
	token, err := t.Parse(tokenString, kind)
	if err != nil {
		return nil
	}

	return &token.TokenClaims
}
