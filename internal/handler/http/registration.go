package http

import (
	"encoding/json"
	"net/http"

	"github.com/mkarpushin/store-identity/internal/logger"
	"github.com/mkarpushin/store-identity/internal/utils"
	"github.com/mkarpushin/store-identity/models"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	resp, err := h.services.RegistrationService.Register(ctx, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	log.Debug().Str("email", resp.Email).Msg("registration staged, verification code dispatched")

	// 201 acknowledges the staged registration; no user exists yet
	utils.WriteJSON(w, resp, http.StatusCreated)
}

func (h *Handler) sendOtp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.SendOtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.RegistrationService.SendOtp(ctx, req.Email, req.Purpose); err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.MessageResponse{Message: "verification code sent"}, http.StatusOK)
}

func (h *Handler) verifyOtp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.VerifyOtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	purpose := req.Purpose
	if purpose == "" {
		purpose = models.OtpPurposeEmailVerification
	}

	resp, err := h.services.RegistrationService.VerifyOtp(ctx, req.Email, req.Code, purpose)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}
