package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/peerhub/internal/auth"
	"github.com/sakif/peerhub/internal/model"
	"github.com/sakif/peerhub/internal/service"
)

const oauthStateCookie = "oauth_state"

// AuthHandler manages signup, login, logout, session verification and the
// Google federated flows.
//
// HANDLER RESPONSIBILITIES:
//   - HandleSignup / HandleLogin      → local credentials, then a session cookie
//   - HandleLogout                    → clear the session cookie
//   - HandleVerify                    → return the caller's identity
//   - HandleGoogle                    → client-side Google button bootstrap
//   - HandleGoogleLogin / Callback    → server-side OAuth2 code flow
//
// google is nil when no client credentials are configured; the server then
// does not mount the server-side routes.
type AuthHandler struct {
	auth        *service.AuthService
	sessions    *auth.Sessions
	google      *auth.GoogleProvider
	frontendURL string
	logger      *slog.Logger
}

func NewAuthHandler(
	authService *service.AuthService,
	sessions *auth.Sessions,
	google *auth.GoogleProvider,
	frontendURL string,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:        authService,
		sessions:    sessions,
		google:      google,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignup registers a local account and logs it in.
//
// HTTP: POST /api/v1/auth/signup
// BODY: {"username": "...", "email": "...", "password": "..."}
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.startSession(w, r, user)
}

// HandleLogin authenticates with email and password.
//
// HTTP: POST /api/v1/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.startSession(w, r, user)
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /api/v1/auth/logout
//
// Sessions are stateless, so the token stays valid until it expires; the
// browser just stops sending it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Revoke(w)
	writeOK(w, payload{"message": "Logout Success"})
}

// HandleVerify returns the identity RequireAuth attached to the request.
//
// HTTP: GET /api/v1/auth/verify/token
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false,
			"message": "Token not Valid",
			"error":   "Token not Valid",
		})
		return
	}
	writeOK(w, payload{"user": identity})
}

// HandleGoogle bootstraps an account from a Google login performed in the
// browser. The password field is the client's generated secret; it is
// accepted and discarded.
//
// UNAUTHENTICATED BOOTSTRAP:
// The email comes from the client and is not checked against Google, so a
// caller naming an existing address is signed in as that account, local
// accounts included. The verified path is /google/login followed by
// /google/callback, which exchanges the code and reads a verified email.
//
// HTTP: POST /api/v1/auth/google
func (h *AuthHandler) HandleGoogle(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.auth.FederatedAuth(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.startSession(w, r, user)
}

// HandleGoogleLogin redirects the browser to Google's consent page.
//
// HTTP: GET /api/v1/auth/google/login
//
// CSRF PROTECTION VIA STATE:
// A random state is stored in a short-lived HttpOnly cookie and must come
// back unchanged on the callback.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the server-side flow.
//
// HTTP: GET /api/v1/auth/google/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter against the cookie
//  2. Exchange the code for the Google profile
//  3. Find or create the account through FederatedAuth
//  4. Issue the session cookie and redirect to the frontend
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("google callback: state mismatch")
		writeFailure(w, http.StatusBadRequest, "invalid OAuth state")
		return
	}

	// Single use.
	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("google callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, h.frontendURL+"/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeFailure(w, http.StatusBadRequest, "missing OAuth code")
		return
	}

	gUser, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("google callback: exchange failed", slog.String("error", err.Error()))
		http.Redirect(w, r, h.frontendURL+"/?auth=failed", http.StatusSeeOther)
		return
	}

	user, err := h.auth.FederatedAuth(r.Context(), gUser.Name, gUser.Email, "")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if _, err := h.sessions.Issue(w, user.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	http.Redirect(w, r, h.frontendURL+"/", http.StatusSeeOther)
}

// startSession sets the cookie and answers with the caller's identity.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *model.User) {
	if _, err := h.sessions.Issue(w, user.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, payload{"user": user.Identity()})
}
