package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hospilock/hospilock-api/internal/auth"
	"github.com/hospilock/hospilock-api/internal/lock"
)

type registerLockRequest struct {
	IP    string `json:"ip"`
	Email string `json:"email,omitempty"`
}

type assignLockRequest struct {
	Email string `json:"email"`
	ID    int    `json:"id"`
}

type listLocksResponse struct {
	Locks      []lock.Lock `json:"locks"`
	TotalItems int         `json:"totalItems"`
}

type lockStatusResponse struct {
	ID     int `json:"id"`
	Status int `json:"status"`
}

// handleRegisterLock registers a new door controller, optionally
// assigning it to a resident in the same call.
func (s *Server) handleRegisterLock(w http.ResponseWriter, r *http.Request) {
	var req registerLockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	l, err := s.locks.Register(r.Context(), req.IP, req.Email)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, l)
}

// handleAssignLock gives an existing lock to a resident. Residents can
// only claim a lock for themselves; admins can assign to anyone.
func (s *Server) handleAssignLock(w http.ResponseWriter, r *http.Request) {
	var req assignLockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Email == "" || req.ID <= 0 {
		writeDomainError(w, auth.ErrMissingFields)
		return
	}
	if !s.canAccessAccount(r, auth.NormalizeEmail(req.Email)) {
		writeError(w, http.StatusForbidden, ErrCodeForbidden, "insufficient permissions")
		return
	}

	l, err := s.locks.AssignOwner(r.Context(), req.Email, req.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, l)
}

// handleListLocks returns registered locks with pagination.
func (s *Server) handleListLocks(w http.ResponseWriter, r *http.Request) {
	rng := parsePagination(r)

	locks, err := s.locks.List(r.Context(), rng.Offset, rng.Limit)
	if err != nil {
		s.logger.Error("listing locks", "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	total, err := s.locks.Count(r.Context())
	if err != nil {
		s.logger.Error("counting locks", "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	if locks == nil {
		locks = []lock.Lock{}
	}
	writeJSON(w, http.StatusOK, listLocksResponse{Locks: locks, TotalItems: total})
}

// handleGetLockByID returns one lock record.
func (s *Server) handleGetLockByID(w http.ResponseWriter, r *http.Request) {
	id, err := lockIDParam(r)
	if err != nil {
		writeBadRequest(w, "invalid lock id")
		return
	}

	l, err := s.locks.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, l)
}

// handleGetLockByEmail resolves a resident's lock. Residents can only
// look up their own.
func (s *Server) handleGetLockByEmail(w http.ResponseWriter, r *http.Request) {
	email := auth.NormalizeEmail(chi.URLParam(r, "email"))
	if !s.canAccessAccount(r, email) {
		writeError(w, http.StatusForbidden, ErrCodeForbidden, "insufficient permissions")
		return
	}

	l, err := s.locks.GetByOwnerEmail(r.Context(), email)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, l)
}

// handleGetLockStatus returns just the lock's polarity.
func (s *Server) handleGetLockStatus(w http.ResponseWriter, r *http.Request) {
	id, err := lockIDParam(r)
	if err != nil {
		writeBadRequest(w, "invalid lock id")
		return
	}

	status, err := s.locks.GetStatus(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lockStatusResponse{ID: id, Status: status})
}

// handleLockCommand engages the bolt on a resident's lock.
func (s *Server) handleLockCommand(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, lock.CommandLock)
}

// handleUnlockCommand retracts the bolt on a resident's lock.
func (s *Server) handleUnlockCommand(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, lock.CommandUnlock)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, cmd lock.Command) {
	email := auth.NormalizeEmail(chi.URLParam(r, "email"))
	if !s.canAccessAccount(r, email) {
		writeError(w, http.StatusForbidden, ErrCodeForbidden, "insufficient permissions")
		return
	}

	l, err := s.dispatcher.Execute(r.Context(), email, cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, l)
}

func lockIDParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}
