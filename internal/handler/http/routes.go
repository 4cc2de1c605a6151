package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Init wires the full route table. All auth endpoints are public except
// logout and the profile fetch; the code-peek endpoint exists only outside
// production.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	router.Group(func(r chi.Router) {
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/register", h.register)
		r.Post("/api/auth/send-otp", h.sendOtp)
		r.Post("/api/auth/verify-otp", h.verifyOtp)
		r.Post("/api/auth/refresh-token", h.refreshToken)
		r.Post("/api/auth/forgot-password", h.forgotPassword)
		r.Post("/api/auth/verify-forgot-password-otp", h.verifyForgotPasswordOtp)
		r.Post("/api/auth/reset-password", h.resetPassword)
	})

	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Post("/api/auth/logout", h.logout)
		r.Get("/api/auth/me", h.me)
	})

	if !h.production {
		router.Get("/api/debug/otp", h.peekOtp)
	}

	router.Get("/api/version", h.getVersion)

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
