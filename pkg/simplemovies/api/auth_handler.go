package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
	"golang.org/x/crypto/bcrypt"

	"github.com/tendant/simple-movies/pkg/simplemovies"
)

// Login attempts are throttled harder than the rest of the API.
const (
	loginRateLimit  = 10
	loginRateWindow = 15 * time.Minute
)

// AuthHandler serves admin login, logout, and identity lookup.
type AuthHandler struct {
	auth *Auth
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *Auth) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Routes returns the router for auth operations
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(httprate.LimitByIP(loginRateLimit, loginRateWindow)).
		Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(h.auth.Verifier())
		r.Use(h.auth.RequireAdmin)
		r.Get("/me", h.Me)
	})

	return r
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  simplemovies.Principal `json:"user"`
	Token string                 `json:"token"`
}

// Login checks the credentials against the configured admin identity and, on
// success, issues a token both in the response body and as an http-only
// cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
		return
	}
	if len(req.Username) < 3 || len(req.Username) > 50 {
		renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: "username must be between 3 and 50 characters"})
		return
	}
	if len(req.Password) < 8 || len(req.Password) > 100 {
		renderStatus(w, r, http.StatusBadRequest, ErrorResponse{Message: "password must be between 8 and 100 characters"})
		return
	}

	if req.Username != h.auth.username ||
		bcrypt.CompareHashAndPassword([]byte(h.auth.passwordHash), []byte(req.Password)) != nil {
		slog.Warn("login failed", "username", req.Username, "remote", requestOrigin(r))
		renderStatus(w, r, http.StatusUnauthorized, ErrorResponse{Message: "invalid credentials"})
		return
	}

	tokenString, err := h.auth.issueToken()
	if err != nil {
		slog.Error("failed to issue token", "err", err)
		renderStatus(w, r, http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}

	http.SetCookie(w, h.authCookie(tokenString, int(h.auth.tokenTTL.Seconds())))
	slog.Info("admin logged in", "username", req.Username)
	renderStatus(w, r, http.StatusOK, loginResponse{User: h.auth.principal(), Token: tokenString})
}

// Me returns the authenticated admin identity.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	renderStatus(w, r, http.StatusOK, h.auth.principal())
}

// Logout clears the auth cookie. The token itself stays valid until expiry;
// there is no server-side session to revoke.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.authCookie("", -1))
	renderMessage(w, r, http.StatusOK, "logged out")
}

func (h *AuthHandler) authCookie(value string, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if h.auth.secureCookies {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     authCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.auth.secureCookies,
		SameSite: sameSite,
	}
}
