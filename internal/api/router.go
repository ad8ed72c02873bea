package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hospilock/hospilock-api/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Public routes
	r.Get("/health", s.handleHealth)
	r.Post("/users", s.handleRegisterUser)
	r.Post("/signin", s.handleSignin)
	r.Post("/admin/signin", s.handleAdminSignin)
	// Device firmware callback; controllers carry no credentials.
	r.Post("/logs/lock", s.handleDeviceCallback)

	// Authenticated routes, any role
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/signout", s.handleSignout)
		r.Get("/users/{email}", s.handleGetUser)
		r.Patch("/users/{email}/password", s.handleUpdatePassword)

		r.Post("/locks/user", s.handleAssignLock)
		r.Get("/locks/id/{id}", s.handleGetLockByID)
		r.Get("/locks/email/{email}", s.handleGetLockByEmail)
		r.Get("/locks/status/{id}", s.handleGetLockStatus)
		r.Post("/locks/lock/{email}", s.handleLockCommand)
		r.Post("/locks/unlock/{email}", s.handleUnlockCommand)
	})

	// Admin-only routes
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Use(s.requireRole(auth.RoleAdmin))

		r.Get("/users", s.handleListUsers)
		r.Post("/admins", s.handleRegisterAdmin)
		r.Post("/locks", s.handleRegisterLock)
		r.Get("/locks", s.handleListLocks)
		r.Get("/logs/signin", s.handleListSignins)
		r.Get("/logs/lock", s.handleListLockEvents)
		r.Get("/ws", s.handleWebSocket)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "no such route")
	})

	return r
}

// handleHealth returns a plain liveness response for load balancers.
// The running build is reported in a header so probes can tell
// deployments apart without parsing the body.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if s.version != "" {
		w.Header().Set("X-Version", s.version)
	}
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response
	w.Write([]byte("OK"))
}
