package apitest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/angelmondragon/craftbazaar/pkg/auth"
	pkgerrors "github.com/angelmondragon/craftbazaar/pkg/errors"
	"github.com/angelmondragon/craftbazaar/pkg/storefrontapi"
	"github.com/google/uuid"
)

type ctxKey struct{}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(storefrontapi.HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(storefrontapi.HeaderRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(s.logg.WithRequestID(r.Context(), reqID)))
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				err := fmt.Errorf("panic: %v", rec)
				writeError(r.Context(), s.logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// operation counts the call, applies injected faults and gates.
func (s *Server) operation(op string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if f := s.enter(op); f != nil {
				msg := f.message
				if msg == "" {
					msg = http.StatusText(f.status)
				}
				writeJSON(w, f.status, envelopeError(msg))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireSession accepts a bearer token or the session cookie.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			if c, err := r.Cookie(SessionCookie); err == nil {
				raw = c.Value
			}
		}
		if raw == "" {
			writeError(r.Context(), s.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}
		claims, err := auth.ParseSessionToken(s.token, raw)
		if err != nil {
			writeError(r.Context(), s.logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session"))
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, claims)
		ctx = s.logg.WithUserID(ctx, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) *auth.SessionClaims {
	claims, _ := ctx.Value(ctxKey{}).(*auth.SessionClaims)
	return claims
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
