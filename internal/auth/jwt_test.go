package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// newTestTokenService creates a TokenService with a fixed, known secret.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	if _, err := NewTokenService("short"); err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_DefaultsToThreeDays(t *testing.T) {
	ts := newTestTokenService(t)
	if ts.TTL() != 72*time.Hour {
		t.Errorf("TTL() = %v, want 72h", ts.TTL())
	}
}

// =========================================================================
// GENERATE TESTS
// =========================================================================

func TestGenerate_LooksLikeJWT(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := strings.Count(token, "."); got != 2 {
		t.Errorf("Generate() token doesn't look like a JWT (expected 2 dots, got %d)", got)
	}
}

func TestGenerate_RejectsEmptySubject(t *testing.T) {
	ts := newTestTokenService(t)
	if _, err := ts.Generate(""); err == nil {
		t.Fatal("Generate(\"\") should fail")
	}
}

func TestGenerate_ExpiresInThreeDays(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, &claims{})
	if err != nil {
		t.Fatalf("ParseUnverified() error = %v", err)
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		t.Fatalf("GetExpirationTime() = %v, %v", exp, err)
	}

	remaining := time.Until(exp.Time)
	if remaining < 71*time.Hour || remaining > 72*time.Hour {
		t.Errorf("token expires in %v, want ~72h", remaining)
	}
}

// =========================================================================
// VALIDATE TESTS
// =========================================================================

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user-abc-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got != "user-abc-123" {
		t.Errorf("Validate() userID = %q, want %q", got, "user-abc-123")
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.GenerateWithDuration("user-123", -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	_, err = ts.Validate(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Validate() error = %v, want ErrTokenExpired", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	ts := newTestTokenService(t)
	good, _ := ts.Generate("user-123")

	other, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!")
	foreign, _ := other.Generate("user-123")

	wrongIssuer := func() string {
		c := claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(ts.secret)
		return s
	}()

	noExpiry := func() string {
		c := claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123", Issuer: issuer}}
		s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(ts.secret)
		return s
	}()

	cases := []struct {
		name  string
		token string
	}{
		{"tampered signature", good[:len(good)-3] + "xxx"},
		{"signed with another secret", foreign},
		{"wrong issuer", wrongIssuer},
		{"no expiry", noExpiry},
		{"empty", ""},
		{"garbage", "not.a.jwt.token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ts.Validate(tc.token)
			if !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("Validate() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}
