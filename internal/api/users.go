package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hospilock/hospilock-api/internal/auth"
)

type registerUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type registerAdminRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type listUsersResponse struct {
	Users      []auth.Account `json:"users"`
	TotalItems int            `json:"totalItems"`
}

// handleRegisterUser creates a resident account. Registration is open;
// a ward clerk hands residents the URL.
func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	account := &auth.Account{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      auth.RoleUser,
	}
	if err := s.createAccount(r, account, req.Password); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

// handleRegisterAdmin creates a dashboard operator account. Only an
// existing admin can mint another.
func (s *Server) handleRegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req registerAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	account := &auth.Account{Email: req.Email, Role: auth.RoleAdmin}
	if err := s.createAccount(r, account, req.Password); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

// createAccount validates, hashes, and stores a new account. The
// struct carries no password hash in JSON thanks to the json:"-" tag,
// but the hash is cleared anyway before control returns to a handler.
func (s *Server) createAccount(r *http.Request, account *auth.Account, password string) error {
	if account.Email == "" || password == "" {
		return auth.ErrMissingFields
	}
	if !auth.IsValidEmail(account.Email) {
		return auth.ErrInvalidEmail
	}

	hash, err := auth.HashPassword(password, s.secCfg.BcryptCost)
	if err != nil {
		return err
	}
	account.PasswordHash = hash

	if err := s.accounts.Create(r.Context(), account); err != nil {
		return err
	}

	account.PasswordHash = ""
	return nil
}

// handleGetUser returns one resident account. Residents can only read
// their own record; admins can read anyone's.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	email := auth.NormalizeEmail(chi.URLParam(r, "email"))
	if !s.canAccessAccount(r, email) {
		writeError(w, http.StatusForbidden, ErrCodeForbidden, "insufficient permissions")
		return
	}

	account, err := s.accounts.GetByEmail(r.Context(), auth.RoleUser, email)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// handleListUsers returns resident accounts with pagination.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	rng := parsePagination(r)

	users, err := s.accounts.List(r.Context(), auth.RoleUser, rng.Offset, rng.Limit)
	if err != nil {
		s.logger.Error("listing users", "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	total, err := s.accounts.Count(r.Context(), auth.RoleUser)
	if err != nil {
		s.logger.Error("counting users", "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	if users == nil {
		users = []auth.Account{}
	}
	writeJSON(w, http.StatusOK, listUsersResponse{Users: users, TotalItems: total})
}

type updatePasswordRequest struct {
	Password string `json:"password"`
}

// handleUpdatePassword replaces a resident's password. Residents can
// only change their own; admins can reset anyone's.
func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	email := auth.NormalizeEmail(chi.URLParam(r, "email"))
	if !s.canAccessAccount(r, email) {
		writeError(w, http.StatusForbidden, ErrCodeForbidden, "insufficient permissions")
		return
	}

	var req updatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Password == "" {
		writeDomainError(w, auth.ErrMissingFields)
		return
	}

	hash, err := auth.HashPassword(req.Password, s.secCfg.BcryptCost)
	if err != nil {
		s.logger.Error("hashing password", "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	if err := s.accounts.UpdatePassword(r.Context(), auth.RoleUser, email, hash); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// canAccessAccount reports whether the caller may read or modify the
// given resident account.
func (s *Server) canAccessAccount(r *http.Request, email string) bool {
	claims := claimsFrom(r.Context())
	if claims == nil {
		return false
	}
	return claims.Role == auth.RoleAdmin || auth.NormalizeEmail(claims.Subject) == email
}
