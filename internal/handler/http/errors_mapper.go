package http

import (
	"errors"
	"net/http"

	"github.com/mkarpushin/store-identity/internal/logger"
	"github.com/mkarpushin/store-identity/internal/service"
	"github.com/mkarpushin/store-identity/internal/store"
	"github.com/mkarpushin/store-identity/internal/utils"
	"github.com/mkarpushin/store-identity/models"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:       http.StatusBadRequest,
	service.ErrInvalidCredentials:        http.StatusUnauthorized,
	service.ErrTokenIsExpiredOrInvalid:   http.StatusUnauthorized,
	service.ErrAccountInactive:           http.StatusForbidden,
	service.ErrRoleNotAllowed:            http.StatusForbidden,
	service.ErrEmailAlreadyRegistered:    http.StatusBadRequest,
	service.ErrUsernameAlreadyRegistered: http.StatusBadRequest,
	service.ErrUnknownEmail:              http.StatusNotFound,
	service.ErrOtpInvalidOrExpired:       http.StatusBadRequest,
	service.ErrTooManyOtpAttempts:        http.StatusBadRequest,
	service.ErrOtpRateLimited:            http.StatusTooManyRequests,
	service.ErrMailDelivery:              http.StatusInternalServerError,
	service.ErrPasswordTooWeak:           http.StatusBadRequest,
	service.ErrPasswordReused:            http.StatusBadRequest,

	store.ErrEmailAlreadyExists:    http.StatusBadRequest,
	store.ErrUsernameAlreadyExists: http.StatusBadRequest,
	store.ErrNoUserWasFound:        http.StatusNotFound,
	store.ErrNoOtpWasFound:         http.StatusNotFound,

	ErrNoUserInContext: http.StatusBadRequest,

	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
}

func statusFromError(err error) int {
	var locked *service.LockedError
	if errors.As(err, &locked) {
		return http.StatusLocked
	}

	var notVerified *service.EmailNotVerifiedError
	if errors.As(err, &notVerified) {
		return http.StatusForbidden
	}

	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}

	return http.StatusInternalServerError
}

// writeError serializes err as a uniform [models.ErrorResponse]. Carrier
// errors contribute their extra fields (remaining attempts, lockout expiry);
// anything mapping to 500 is logged in full and replaced with a generic
// message so raw driver errors never reach the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)
	status := statusFromError(err)

	resp := models.ErrorResponse{Error: err.Error()}

	var wrongPassword *service.WrongPasswordError
	if errors.As(err, &wrongPassword) {
		remaining := wrongPassword.RemainingAttempts
		resp.RemainingAttempts = &remaining
	}

	var locked *service.LockedError
	if errors.As(err, &locked) {
		expiry := locked.LockoutExpiry
		resp.LockoutExpiry = &expiry
	}

	if status == http.StatusInternalServerError {
		log.Err(err).Int("status", status).Msg("request failed")
		resp.Error = http.StatusText(http.StatusInternalServerError)
	} else {
		log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	utils.WriteJSON(w, resp, status)
}
