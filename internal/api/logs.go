package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hospilock/hospilock-api/internal/audit"
	"github.com/hospilock/hospilock-api/internal/infrastructure/mqtt"
)

type listSigninsResponse struct {
	Logs       []audit.SigninEvent `json:"logs"`
	TotalItems int                 `json:"totalItems"`
}

type listLockEventsResponse struct {
	Logs       []audit.LockEvent `json:"logs"`
	TotalItems int               `json:"totalItems"`
}

type deviceCallbackRequest struct {
	Timestamp string `json:"timestamp"`
	IP        string `json:"ip,omitempty"`
	Status    int    `json:"status"`
}

// handleListSignins returns the signin audit log with pagination.
func (s *Server) handleListSignins(w http.ResponseWriter, r *http.Request) {
	rng := parsePagination(r)

	events, err := s.audit.ListSignins(r.Context(), rng)
	if err != nil {
		s.logger.Error("listing signin events", "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	// Count failures keep the log readable on the dashboard.
	total, err := s.audit.CountSignins(r.Context())
	if err != nil {
		s.logger.Warn("counting signin events", "error", err)
		total = 0
	}

	if events == nil {
		events = []audit.SigninEvent{}
	}
	writeJSON(w, http.StatusOK, listSigninsResponse{Logs: events, TotalItems: total})
}

// handleListLockEvents returns the device event log with pagination.
func (s *Server) handleListLockEvents(w http.ResponseWriter, r *http.Request) {
	rng := parsePagination(r)

	events, err := s.audit.ListLockEvents(r.Context(), rng)
	if err != nil {
		s.logger.Error("listing lock events", "error", err)
		writeInternalError(w, "internal server error")
		return
	}

	total, err := s.audit.CountLockEvents(r.Context())
	if err != nil {
		s.logger.Warn("counting lock events", "error", err)
		total = 0
	}

	if events == nil {
		events = []audit.LockEvent{}
	}
	writeJSON(w, http.StatusOK, listLockEventsResponse{Logs: events, TotalItems: total})
}

// handleDeviceCallback ingests a state report from lock firmware.
// Controllers call this after any bolt movement, commanded or manual.
// The route is unauthenticated because the firmware holds no
// credentials; the strict timestamp format and status validation are
// the only gate.
func (s *Server) handleDeviceCallback(w http.ResponseWriter, r *http.Request) {
	var req deviceCallbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	ip := req.IP
	if ip == "" {
		ip = clientIP(r)
	}

	event, err := s.audit.RecordLockEvent(r.Context(), req.Timestamp, ip, req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.broadcastLockEvent(event)

	writeJSON(w, http.StatusCreated, event)
}

// broadcastLockEvent fans a device report out to dashboard consumers.
// Fanout failures never affect the device's response.
func (s *Server) broadcastLockEvent(event *audit.LockEvent) {
	if s.hub != nil {
		s.hub.Broadcast("lock.event", event)
	}

	if s.mqtt != nil && s.mqtt.IsConnected() {
		payload, err := json.Marshal(event)
		if err != nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.mqtt.Publish(ctx, mqtt.LockEventTopic(), payload); err != nil {
			s.logger.Warn("publishing lock event", "error", err)
		}
	}
}
