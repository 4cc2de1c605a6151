package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *StructuredConfig {
	return &StructuredConfig{
		Auth: Auth{
			AccessTokenSignKey:  "access-secret",
			RefreshTokenSignKey: "refresh-secret",
			TokenIssuer:         "store-identity",
			TokenAudience:       "storefront",
		},
		Storage: Storage{DB: DB{DSN: "postgres://localhost/store"}},
	}
}

func TestValidate_AppliesDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.validate())

	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Auth.LockoutDuration)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenDuration)
	assert.Equal(t, 500*time.Millisecond, cfg.Auth.NotFoundDelay)
	assert.Equal(t, time.Second, cfg.Auth.StorageFaultDelay)
	assert.Equal(t, 10*time.Minute, cfg.Otp.TTL)
	assert.Equal(t, 5, cfg.Otp.MaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.Otp.RateLimitWindow)
	assert.Equal(t, 3, cfg.Otp.RateLimitCeiling)
	assert.Equal(t, "localhost:8080", cfg.Server.HTTPAddress)
}

func TestValidate_KeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.MaxLoginAttempts = 10
	cfg.Otp.RateLimitCeiling = 1

	require.NoError(t, cfg.validate())

	assert.Equal(t, 10, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 1, cfg.Otp.RateLimitCeiling)
}

func TestValidate_MissingSignKeys(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.AccessTokenSignKey = ""

	assert.ErrorIs(t, cfg.validate(), ErrInvalidAuthConfigs)
}

func TestValidate_IdenticalSignKeys(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.RefreshTokenSignKey = cfg.Auth.AccessTokenSignKey

	assert.ErrorIs(t, cfg.validate(), ErrInvalidAuthConfigs)
}

func TestValidate_MissingIssuerOrAudience(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.TokenAudience = ""

	assert.ErrorIs(t, cfg.validate(), ErrInvalidAuthConfigs)
}

func TestValidate_MissingDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.DB.DSN = ""

	assert.ErrorIs(t, cfg.validate(), ErrInvalidStorageConfigs)
}

func TestValidate_ProductionRequiresMail(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = EnvProduction

	assert.ErrorIs(t, cfg.validate(), ErrInvalidMailConfigs)

	cfg.Mail = Mail{Host: "smtp.example.com", Port: 587, From: "noreply@example.com"}
	assert.NoError(t, cfg.validate())
}

func TestIsProduction(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.IsProduction())

	cfg.Environment = EnvProduction
	assert.True(t, cfg.IsProduction())
}
