package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAuthConfigs indicates invalid authentication settings
	// (missing signing keys, identical access/refresh secrets, or missing
	// issuer/audience strings).
	ErrInvalidAuthConfigs = errors.New("invalid auth configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, an empty DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidMailConfigs indicates incomplete SMTP settings in an
	// environment where mail delivery is mandatory.
	ErrInvalidMailConfigs = errors.New("invalid mail configuration")
)
