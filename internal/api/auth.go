package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/hospilock/hospilock-api/internal/auth"
)

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinResponse struct {
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleSignin authenticates a resident account and starts a session.
func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	s.signin(w, r, auth.RoleUser)
}

// handleAdminSignin authenticates a dashboard operator account.
func (s *Server) handleAdminSignin(w http.ResponseWriter, r *http.Request) {
	s.signin(w, r, auth.RoleAdmin)
}

func (s *Server) signin(w http.ResponseWriter, r *http.Request, role auth.Role) {
	var req signinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	ip := clientIP(r)
	account, err := s.auth.Authenticate(r.Context(), req.Email, req.Password, role)
	if err != nil {
		// Failed attempts are logged too; validation noise is not.
		if errors.Is(err, auth.ErrAccountNotFound) || errors.Is(err, auth.ErrInvalidCredentials) {
			s.recordSignin(r, req.Email, ip, false)
		}
		writeDomainError(w, err)
		return
	}

	token, expiresAt, err := s.auth.IssueToken(account.Email, role)
	if err != nil {
		s.logger.Error("issuing token", "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	http.SetCookie(w, s.sessionCookie(token, expiresAt))
	s.recordSignin(r, account.Email, ip, true)

	writeJSON(w, http.StatusOK, signinResponse{
		Email:     account.Email,
		Role:      role,
		ExpiresAt: expiresAt,
	})
}

// handleSignout ends the session by expiring the cookie client-side.
// Tokens are stateless, so a captured token stays valid until expiry.
func (s *Server) handleSignout(w http.ResponseWriter, _ *http.Request) {
	cookie := s.sessionCookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

// sessionCookie builds the HTTP-only session cookie. Secure is a config
// knob because ward deployments often terminate TLS at a proxy.
func (s *Server) sessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   s.secCfg.JWT.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	}
}

// recordSignin appends to the signin audit log. Audit failures are
// logged but never block the signin flow.
func (s *Server) recordSignin(r *http.Request, email, ip string, success bool) {
	if err := s.audit.RecordSignin(r.Context(), auth.NormalizeEmail(email), ip, success); err != nil {
		s.logger.Warn("recording signin event", "error", err)
	}
}
