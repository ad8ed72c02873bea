package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hospilock/hospilock-api/internal/auth"
)

func TestDeviceCallback(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(postJSON("/logs/lock", `{"timestamp":"1693526400000","ip":"::ffff:10.0.0.5","status":1}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if len(env.audit.lockEvents) != 1 {
		t.Fatalf("recorded %d events, want 1", len(env.audit.lockEvents))
	}
	event := env.audit.lockEvents[0]
	if event.Timestamp != 1693526400 {
		t.Errorf("timestamp = %d, want seconds", event.Timestamp)
	}
}

func TestDeviceCallback_BadTimestamp(t *testing.T) {
	env := newTestEnv(t, 0)

	tests := []struct {
		name string
		body string
	}{
		{"seconds not millis", `{"timestamp":"1693526400","status":1}`},
		{"not numeric", `{"timestamp":"not-a-time","status":1}`},
		{"missing", `{"status":1}`},
		{"bad status", `{"timestamp":"1693526400000","status":7}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(postJSON("/logs/lock", tt.body))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}

	if len(env.audit.lockEvents) != 0 {
		t.Errorf("recorded %d events, want none", len(env.audit.lockEvents))
	}
}

func TestListLockEvents(t *testing.T) {
	env := newTestEnv(t, 0)
	env.do(postJSON("/logs/lock", `{"timestamp":"1693526400000","ip":"10.0.0.5","status":1}`))
	env.do(postJSON("/logs/lock", `{"timestamp":"1693526500000","ip":"10.0.0.5","status":0}`))

	req := httptest.NewRequest(http.MethodGet, "/logs/lock", nil)
	req.AddCookie(env.sessionCookie(t, "ops@example.com", auth.RoleAdmin))
	rec := env.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp listLockEventsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Logs) != 2 || resp.TotalItems != 2 {
		t.Errorf("response = %+v, want both events", resp)
	}
}

func TestListSignins_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/logs/signin", nil)
	req.AddCookie(env.sessionCookie(t, "jane@example.com", auth.RoleUser))
	if rec := env.do(req); rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/logs/signin", nil)
	req.AddCookie(env.sessionCookie(t, "ops@example.com", auth.RoleAdmin))
	if rec := env.do(req); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
