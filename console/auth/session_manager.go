package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"campusdata/console/schema"

	"github.com/go-chi/jwtauth/v5"
)

// SessionManager issues and verifies the signed session tokens handed out at
// login. Tokens carry the session role and username; there is no server side
// session state.
type SessionManager struct {
	auth *jwtauth.JWTAuth
}

func NewSessionManager(secret []byte) *SessionManager {
	return &SessionManager{auth: jwtauth.New("HS256", secret, nil)}
}

func (m *SessionManager) Verifier() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return jwtauth.Verifier(m.auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
		}))
	}
}

func (m *SessionManager) Authenticator() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return jwtauth.Authenticator(m.auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
		}))
	}
}

const (
	roleKey     = "role"
	usernameKey = "username"
)

const sessionTokenExpiry = 12 * time.Hour

func (m *SessionManager) CreateSessionToken(session schema.Session) (string, error) {
	claims := map[string]interface{}{
		roleKey:     string(session.Role),
		usernameKey: session.Username,
		"exp":       time.Now().Add(sessionTokenExpiry),
	}
	_, token, err := m.auth.Encode(claims)
	if err != nil {
		slog.Error("error generating session token", "error", err)
		return "", fmt.Errorf("error generating session token: %w", err)
	}
	return token, nil
}

func claimFromContext(r *http.Request, key string) (string, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", fmt.Errorf("error retrieving auth claims: %w", err)
	}

	valueUncasted, ok := claims[key]
	if !ok {
		return "", fmt.Errorf("invalid token: unable to locate key %v in claims", key)
	}

	value, ok := valueUncasted.(string)
	if !ok {
		return "", fmt.Errorf("invalid token: value for key %v has invalid type", key)
	}

	return value, nil
}

type requestContextKey string

const SessionRequestContextKey requestContextKey = "session"

// AddSessionToContext parses the verified token claims into a schema.Session
// and stores it on the request context for the handlers downstream.
func (m *SessionManager) AddSessionToContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		handler := func(w http.ResponseWriter, r *http.Request) {
			role, err := claimFromContext(r, roleKey)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			if err := schema.CheckValidAppRole(schema.AppRole(role)); err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			username, err := claimFromContext(r, usernameKey)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			session := schema.Session{Role: schema.AppRole(role), Username: username}

			reqCtx := context.WithValue(r.Context(), SessionRequestContextKey, session)
			next.ServeHTTP(w, r.WithContext(reqCtx))
		}

		return http.HandlerFunc(handler)
	}
}

func SessionFromContext(r *http.Request) (schema.Session, error) {
	sessionUntyped := r.Context().Value(SessionRequestContextKey)
	if sessionUntyped == nil {
		return schema.Session{}, fmt.Errorf("session field not found in request context")
	}
	session, ok := sessionUntyped.(schema.Session)
	if !ok {
		return schema.Session{}, fmt.Errorf("invalid value for session field")
	}
	return session, nil
}
