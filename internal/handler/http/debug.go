package http

import (
	"net/http"

	"github.com/mkarpushin/store-identity/internal/utils"
	"github.com/mkarpushin/store-identity/models"
)

// peekOtp exposes the latest live code for an address so development
// environments without a working mail sender can complete verification
// flows. The route is not registered in production.
func (h *Handler) peekOtp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := r.URL.Query().Get("email")
	purpose := models.OtpPurpose(r.URL.Query().Get("purpose"))
	if purpose == "" {
		purpose = models.OtpPurposeEmailVerification
	}

	code, err := h.services.RegistrationService.PeekLatestCode(ctx, email, purpose)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, map[string]string{"email": email, "code": code}, http.StatusOK)
}
