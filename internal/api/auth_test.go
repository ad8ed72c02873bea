package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hospilock/hospilock-api/internal/auth"
)

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSignin_Success(t *testing.T) {
	env := newTestEnv(t, 0)
	env.seedAccount(t, "jane@example.com", "pw12345678", auth.RoleUser)

	rec := env.do(postJSON("/signin", `{"email":"Jane@Example.com","password":"pw12345678"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != cookieName {
		t.Fatalf("cookies = %+v, want one %s cookie", cookies, cookieName)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	if len(env.audit.signins) != 1 || !env.audit.signins[0].Success {
		t.Errorf("signin events = %+v, want one success", env.audit.signins)
	}
}

func TestSignin_UnknownAccount(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(postJSON("/signin", `{"email":"ghost@example.com","password":"pw"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(env.audit.signins) != 1 || env.audit.signins[0].Success {
		t.Errorf("signin events = %+v, want one failure", env.audit.signins)
	}
}

func TestSignin_WrongPassword(t *testing.T) {
	env := newTestEnv(t, 0)
	env.seedAccount(t, "jane@example.com", "pw12345678", auth.RoleUser)

	rec := env.do(postJSON("/signin", `{"email":"jane@example.com","password":"wrong"}`))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAdminSignin_UserAccountRejected(t *testing.T) {
	env := newTestEnv(t, 0)
	env.seedAccount(t, "jane@example.com", "pw12345678", auth.RoleUser)

	// Same credentials, admin namespace: the account does not exist there.
	rec := env.do(postJSON("/admin/signin", `{"email":"jane@example.com","password":"pw12345678"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRequireAuth_NoCookie(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(httptest.NewRequest(http.MethodPost, "/signout", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for missing cookie", rec.Code)
	}
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	env := newTestEnv(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/signout", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "not-a-token"})
	rec := env.do(req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for invalid token", rec.Code)
	}
}

func TestRequireRole_UserOnAdminRoute(t *testing.T) {
	env := newTestEnv(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.AddCookie(env.sessionCookie(t, "jane@example.com", auth.RoleUser))
	rec := env.do(req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for non-admin caller", rec.Code)
	}
}

func TestSignout_ClearsCookie(t *testing.T) {
	env := newTestEnv(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/signout", nil)
	req.AddCookie(env.sessionCookie(t, "jane@example.com", auth.RoleUser))
	rec := env.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("cookies = %+v, want expired session cookie", cookies)
	}
}
