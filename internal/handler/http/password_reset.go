package http

import (
	"encoding/json"
	"net/http"

	"github.com/mkarpushin/store-identity/internal/logger"
	"github.com/mkarpushin/store-identity/internal/utils"
	"github.com/mkarpushin/store-identity/models"
)

// forgotPasswordMessage is returned whether or not the address exists, so
// the endpoint cannot be used to enumerate accounts.
const forgotPasswordMessage = "if the email is registered, a reset code has been sent"

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.PasswordResetService.ForgotPassword(ctx, req.Email); err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.MessageResponse{Message: forgotPasswordMessage}, http.StatusOK)
}

func (h *Handler) verifyForgotPasswordOtp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.VerifyOtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.PasswordResetService.VerifyResetOtp(ctx, req.Email, req.Code); err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.VerifyOtpResponse{Verified: true}, http.StatusOK)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.PasswordResetService.ResetPassword(ctx, req.Email, req.Code, req.NewPassword); err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.MessageResponse{Message: "password has been reset"}, http.StatusOK)
}
