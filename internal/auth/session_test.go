package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func issuedCookie(t *testing.T, production bool) *http.Cookie {
	t.Helper()
	s := NewSessions(newTestTokenService(t), production)

	rr := httptest.NewRecorder()
	if _, err := s.Issue(rr, "user-1"); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	return cookies[0]
}

func TestSessions_IssueDevelopment(t *testing.T) {
	c := issuedCookie(t, false)

	if c.Name != CookieName {
		t.Errorf("Name = %q, want %q", c.Name, CookieName)
	}
	if !c.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if c.SameSite != http.SameSiteStrictMode {
		t.Errorf("SameSite = %v, want Strict in development", c.SameSite)
	}
	if c.Secure {
		t.Error("development cookie should not require HTTPS")
	}
	if c.MaxAge != 259200 {
		t.Errorf("MaxAge = %d, want 259200 (3 days)", c.MaxAge)
	}
}

func TestSessions_IssueProduction(t *testing.T) {
	c := issuedCookie(t, true)

	if c.SameSite != http.SameSiteNoneMode {
		t.Errorf("SameSite = %v, want None in production", c.SameSite)
	}
	if !c.Secure {
		t.Error("production cookie must be Secure")
	}
}

func TestSessions_IssuedTokenValidates(t *testing.T) {
	ts := newTestTokenService(t)
	s := NewSessions(ts, false)

	rr := httptest.NewRecorder()
	token, err := s.Issue(rr, "user-42")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	got, err := ts.Validate(token)
	if err != nil || got != "user-42" {
		t.Fatalf("Validate() = %q, %v; want user-42", got, err)
	}
}

func TestSessions_Revoke(t *testing.T) {
	s := NewSessions(newTestTokenService(t), false)

	rr := httptest.NewRecorder()
	s.Revoke(rr)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	if cookies[0].Value != "" || cookies[0].MaxAge >= 0 {
		t.Errorf("Revoke() cookie = %+v, want empty value and negative MaxAge", cookies[0])
	}
}
