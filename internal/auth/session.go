package auth

import (
	"net/http"
)

// CookieName is the name of the session cookie, named for the product.
const CookieName = "peerHub"

// Sessions writes and clears the session cookie.
//
// COOKIE POLICY:
//   - HttpOnly always: JavaScript can never read the token.
//   - Production: SameSite=None + Secure, because the frontend is served from
//     a different origin and the cookie must ride on cross-site XHR.
//   - Development: SameSite=Strict over plain HTTP on localhost.
type Sessions struct {
	tokens     *TokenService
	production bool
}

// NewSessions creates a cookie writer for tokens issued by the given service.
func NewSessions(tokens *TokenService, production bool) *Sessions {
	return &Sessions{tokens: tokens, production: production}
}

// Issue signs a session token for userID and sets it on the response.
func (s *Sessions) Issue(w http.ResponseWriter, userID string) (string, error) {
	token, err := s.tokens.Generate(userID)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, s.cookie(token, int(s.tokens.TTL().Seconds())))
	return token, nil
}

// Revoke clears the session cookie. The token itself stays valid until it
// expires, but the browser no longer sends it.
func (s *Sessions) Revoke(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", -1))
}

func (s *Sessions) cookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	if s.production {
		c.SameSite = http.SameSiteNoneMode
		c.Secure = true
	}
	return c
}

// tokenFromRequest returns the raw session token, or "" if the cookie is absent.
func tokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
