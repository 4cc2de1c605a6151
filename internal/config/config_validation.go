package config

import "time"

// Documented defaults for every externally tunable security parameter.
const (
	defaultMaxLoginAttempts     = 5
	defaultLockoutDuration      = 30 * time.Minute
	defaultAccessTokenDuration  = 24 * time.Hour
	defaultRefreshTokenDuration = 7 * 24 * time.Hour
	defaultNotFoundDelay        = 500 * time.Millisecond
	defaultStorageFaultDelay    = time.Second

	defaultOtpTTL              = 10 * time.Minute
	defaultOtpMaxAttempts      = 5
	defaultOtpRateLimitWindow  = 10 * time.Minute
	defaultOtpRateLimitCeiling = 3
)

// validate applies documented defaults to unset fields and checks that the
// final merged [StructuredConfig] satisfies the application invariants
// before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	cfg.applyDefaults()

	if cfg.Auth.AccessTokenSignKey == "" || cfg.Auth.RefreshTokenSignKey == "" {
		return ErrInvalidAuthConfigs
	}

	// A shared secret would collapse the access/refresh separation.
	if cfg.Auth.AccessTokenSignKey == cfg.Auth.RefreshTokenSignKey {
		return ErrInvalidAuthConfigs
	}

	if cfg.Auth.TokenIssuer == "" || cfg.Auth.TokenAudience == "" {
		return ErrInvalidAuthConfigs
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.IsProduction() && (cfg.Mail.Host == "" || cfg.Mail.Port == 0 || cfg.Mail.From == "") {
		return ErrInvalidMailConfigs
	}

	return nil
}

func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Auth.MaxLoginAttempts == 0 {
		cfg.Auth.MaxLoginAttempts = defaultMaxLoginAttempts
	}
	if cfg.Auth.LockoutDuration == 0 {
		cfg.Auth.LockoutDuration = defaultLockoutDuration
	}
	if cfg.Auth.AccessTokenDuration == 0 {
		cfg.Auth.AccessTokenDuration = defaultAccessTokenDuration
	}
	if cfg.Auth.RefreshTokenDuration == 0 {
		cfg.Auth.RefreshTokenDuration = defaultRefreshTokenDuration
	}
	if cfg.Auth.NotFoundDelay == 0 {
		cfg.Auth.NotFoundDelay = defaultNotFoundDelay
	}
	if cfg.Auth.StorageFaultDelay == 0 {
		cfg.Auth.StorageFaultDelay = defaultStorageFaultDelay
	}

	if cfg.Otp.TTL == 0 {
		cfg.Otp.TTL = defaultOtpTTL
	}
	if cfg.Otp.MaxAttempts == 0 {
		cfg.Otp.MaxAttempts = defaultOtpMaxAttempts
	}
	if cfg.Otp.RateLimitWindow == 0 {
		cfg.Otp.RateLimitWindow = defaultOtpRateLimitWindow
	}
	if cfg.Otp.RateLimitCeiling == 0 {
		cfg.Otp.RateLimitCeiling = defaultOtpRateLimitCeiling
	}

	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = "localhost:8080"
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
}
