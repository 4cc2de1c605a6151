package store

import (
	"github.com/mkarpushin/store-identity/internal/logger"
)

// Storages aggregates all repositories backed by the shared database
// connection.
type Storages struct {
	UserRepository UserRepository
	OtpRepository  OtpRepository
}

// NewStorages wires all repositories to the given database connection.
func NewStorages(db *DB, logger *logger.Logger) *Storages {
	return &Storages{
		UserRepository: NewUserRepository(db, logger),
		OtpRepository:  NewOtpRepository(db, logger),
	}
}
