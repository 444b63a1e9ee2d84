package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/autopneuma/pneuma/internal/auth"
	"github.com/autopneuma/pneuma/internal/domain"
)

// Accounts is the hosted auth service, implemented by auth.Client
type Accounts interface {
	SignUp(ctx context.Context, form domain.Signup) (*auth.User, *auth.Session, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	GetUser(ctx context.Context, accessToken string) (*auth.User, error)
}

type ctxKey int

const userKey ctxKey = iota

// userID returns the signed-in caller, or "" for anonymous requests
func userID(r *http.Request) string {
	id, _ := r.Context().Value(userKey).(string)
	return id
}

// withUser resolves a bearer token to its user. Requests without a token pass
// through anonymously; an invalid token is rejected.
func (s *Server) withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			next.ServeHTTP(w, r)
			return
		}
		if s.svc.Accounts == nil {
			writeError(w, http.StatusUnauthorized, "Authentication is not configured")
			return
		}
		user, err := s.svc.Accounts.GetUser(r.Context(), token)
		if err != nil {
			s.logger.Debug("rejected bearer token", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID(r) == "" {
			writeError(w, http.StatusUnauthorized, "You must be logged in")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type signUpResponse struct {
	User    *auth.User    `json:"user"`
	Session *auth.Session `json:"session"`
	// ConfirmEmail is set when the account must be confirmed before sign in.
	ConfirmEmail bool `json:"confirm_email"`
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	if s.svc.Accounts == nil {
		writeError(w, http.StatusServiceUnavailable, "Authentication is not configured")
		return
	}
	var form domain.Signup
	if !decode(w, r, &form) {
		return
	}
	user, session, err := s.svc.Accounts.SignUp(r.Context(), form)
	if err != nil {
		s.writeAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, signUpResponse{User: user, Session: session, ConfirmEmail: session == nil})
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	if s.svc.Accounts == nil {
		writeError(w, http.StatusServiceUnavailable, "Authentication is not configured")
		return
	}
	var req signInRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}
	session, err := s.svc.Accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// writeAuthError passes the auth service's client errors through and hides
// its server errors behind 502.
func (s *Server) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		if authErr.StatusCode >= 400 && authErr.StatusCode < 500 {
			writeError(w, authErr.StatusCode, authErr.Message)
			return
		}
		s.logger.Error("auth service failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusBadGateway, "Authentication service unavailable")
		return
	}
	s.writeDomainError(w, r, err)
}
