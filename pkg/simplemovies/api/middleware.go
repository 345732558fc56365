package api

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/jwtauth"

	"github.com/tendant/simple-movies/pkg/simplemovies"
)

const authCookieName = "jwt"

// Auth issues and verifies admin tokens. Tokens are accepted from either the
// Authorization header or the auth cookie set by Login.
type Auth struct {
	tokenAuth     *jwtauth.JWTAuth
	username      string
	passwordHash  string
	tokenTTL      time.Duration
	secureCookies bool
}

// NewAuth creates an Auth from the configured admin identity. secureCookies
// should be true behind TLS; it controls the cookie's Secure and SameSite
// attributes.
func NewAuth(secret, username, passwordHash string, tokenTTL time.Duration, secureCookies bool) *Auth {
	return &Auth{
		tokenAuth:     jwtauth.New("HS256", []byte(secret), nil),
		username:      username,
		passwordHash:  passwordHash,
		tokenTTL:      tokenTTL,
		secureCookies: secureCookies,
	}
}

// Verifier parses a token from the request, if any, into the request context.
// It never rejects a request on its own; pair it with RequireAdmin.
func (a *Auth) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verifier(a.tokenAuth)
}

// RequireAdmin rejects requests without a valid token (401) or whose token
// lacks the admin claim (403).
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			renderStatus(w, r, http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
			return
		}
		if admin, ok := claims["admin"].(bool); !ok || !admin {
			renderStatus(w, r, http.StatusForbidden, ErrorResponse{Message: "admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Auth) issueToken() (string, error) {
	claims := map[string]interface{}{
		"sub":      "admin",
		"username": a.username,
		"admin":    true,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, a.tokenTTL)

	_, tokenString, err := a.tokenAuth.Encode(claims)
	return tokenString, err
}

func (a *Auth) principal() simplemovies.Principal {
	return simplemovies.Principal{
		ID:       "admin",
		Username: a.username,
		Name:     a.username,
		IsAdmin:  true,
	}
}

// requestOrigin returns the client address used for anonymous comment
// ownership: the first X-Forwarded-For hop when present, otherwise the
// connection's remote host.
func requestOrigin(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
