package http

import (
	"encoding/json"
	"net/http"

	"github.com/mkarpushin/store-identity/internal/logger"
	"github.com/mkarpushin/store-identity/internal/utils"
	"github.com/mkarpushin/store-identity/models"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	session, err := h.services.AuthService.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	log.Debug().Int64("id", session.User.UserID).Msg("user successfully logged in")

	utils.WriteJSON(w, models.LoginResponse{
		Token:        session.AccessToken.SignedString,
		RefreshToken: session.RefreshToken.SignedString,
		User:         session.User,
		ExpiresIn:    int64(h.accessTokenDuration.Seconds()),
	}, http.StatusOK)
}

func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	accessToken, err := h.services.AuthService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.RefreshResponse{
		Token:     accessToken.SignedString,
		ExpiresIn: int64(h.accessTokenDuration.Seconds()),
	}, http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user in request context")
		h.writeError(w, r, ErrNoUserInContext)
		return
	}

	// body is optional: logout without a refresh token just acknowledges
	var req models.LogoutRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	h.services.AuthService.Logout(ctx, userID, req.RefreshToken)

	utils.WriteJSON(w, models.MessageResponse{Message: "logged out"}, http.StatusOK)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user in request context")
		h.writeError(w, r, ErrNoUserInContext)
		return
	}

	user, err := h.services.AuthService.GetUser(ctx, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, user, http.StatusOK)
}
