package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/buran83/makechat/internal/http/middleware"
	"github.com/buran83/makechat/internal/http/response"
	"github.com/buran83/makechat/internal/observability"
	"github.com/buran83/makechat/internal/security"
	"github.com/buran83/makechat/internal/service"
)

type AuthHandler struct {
	auth       *service.AuthService
	sessionTTL time.Duration
}

func NewAuthHandler(auth *service.AuthService, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: auth, sessionTTL: sessionTTL}
}

// Login checks credentials and establishes a cookie session. Every failed
// attempt gets the same generic body so callers cannot probe which field
// was wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	payload, ok := payloadOrError(w, r)
	if !ok {
		return
	}
	username, ok := requireParam(w, payload, "username")
	if !ok {
		return
	}
	password, ok := requireParam(w, payload, "password")
	if !ok {
		return
	}

	user, sessionValue, err := h.auth.Login(r.Context(), username, password)
	switch {
	case errors.Is(err, security.ErrNonASCII):
		response.Error(w, http.StatusUnauthorized, "Bad password symbols",
			"Invalid password characters.")
		return
	case errors.Is(err, service.ErrBadCredentials):
		response.Error(w, http.StatusUnauthorized, "Bad login attempt",
			"Invalid username or password.")
		return
	case err != nil:
		observability.Audit(r, "login.error", "error", err.Error())
		response.Error(w, http.StatusInternalServerError, "Internal error",
			"Could not complete the login.")
		return
	}

	h.setSessionCookie(w, sessionValue)
	observability.Audit(r, "login.success", "username", user.Username)
	response.JSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"username": user.Username,
	})
}

// Register creates a new profile. Store validation failures are relayed
// into the error description unmodified.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	payload, ok := payloadOrError(w, r)
	if !ok {
		return
	}
	email, ok := requireParam(w, payload, "email")
	if !ok {
		return
	}
	username, ok := requireParam(w, payload, "username")
	if !ok {
		return
	}
	password1, ok := requireParam(w, payload, "password1")
	if !ok {
		return
	}
	password2, ok := requireParam(w, payload, "password2")
	if !ok {
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:     email,
		Username:  username,
		Password1: password1,
		Password2: password2,
	})
	switch {
	case errors.Is(err, service.ErrPasswordMismatch):
		response.Error(w, http.StatusBadRequest, "Bad password", "Passwords do not match.")
		return
	case errors.Is(err, service.ErrUsernameTaken):
		response.Error(w, http.StatusBadRequest, "Bad username", "Username is already taken.")
		return
	case errors.Is(err, service.ErrEmailTaken):
		response.Error(w, http.StatusBadRequest, "Bad email", "Email is already taken.")
		return
	case errors.Is(err, security.ErrNonASCII):
		response.Error(w, http.StatusBadRequest, "Bad password symbols",
			"Invalid password characters.")
		return
	case err != nil:
		response.Error(w, http.StatusBadRequest, "Error occurred", err.Error())
		return
	}

	observability.Audit(r, "register.success", "username", user.Username)
	response.JSON(w, http.StatusCreated, map[string]string{
		"status":   "ok",
		"username": user.Username,
	})
}

// Ping reports the authenticated caller's identity.
func (h *AuthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	response.JSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"username": user.Username,
	})
}

// Logout destroys the caller's session and expires the cookie. Token-only
// callers have no session to destroy; the cookie is cleared either way.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.auth.Logout(r.Context(), cookie.Value); err != nil {
			observability.Audit(r, "logout.error", "error", err.Error())
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	response.OK(w)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		// Secure is left unset; TLS terminates upstream.
	})
}
