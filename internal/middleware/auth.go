package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/2beens/volumetracker/internal/session"
	"github.com/2beens/volumetracker/internal/telemetry/tracing"
	"github.com/2beens/volumetracker/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const (
	HeaderSessionToken = "X-TRACKER-TOKEN"
	HeaderAppSecret    = "X-TRACKER-APP-SECRET"
)

type sessionCtxKey struct{}

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=middleware_test

type sessionChecker interface {
	Session(ctx context.Context, token string) (*session.Session, error)
}

// SessionFromContext returns the session the auth middleware attached.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionCtxKey{}).(*session.Session)
	return sess, ok && sess != nil
}

func ContextWithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, sess)
}

type AuthMiddlewareHandler struct {
	appSecret      string
	sessions       sessionChecker
	allowedPaths   map[string]bool
	appSecretPaths map[string]bool
	appSecretPrefs []string
}

func NewAuthMiddlewareHandler(
	appSecret string,
	sessions sessionChecker,
) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		appSecret: appSecret,
		sessions:  sessions,
		allowedPaths: map[string]bool{
			"/":        true,
			"/version": true,
		},
		// sign in results come from the trusted clients, not from a session
		appSecretPaths: map[string]bool{
			"/a/login": true,
		},
		appSecretPrefs: []string{
			"/mcp",
		},
	}
}

func (h *AuthMiddlewareHandler) needsAppSecret(path string) bool {
	if h.appSecretPaths[path] {
		return true
	}
	for _, prefix := range h.appSecretPrefs {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (h *AuthMiddlewareHandler) validAppSecret(secret string) bool {
	if h.appSecret == "" || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(h.appSecret)) == 1
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			if h.needsAppSecret(r.URL.Path) {
				if !h.validAppSecret(r.Header.Get(HeaderAppSecret)) {
					reqIp, _ := pkg.ReadUserIP(r)
					log.Warnf("[bad app secret] [auth middleware] %s from %s", r.URL.Path, reqIp)
					pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
					span.SetStatus(codes.Error, "bad-app-secret")
					return
				}
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authToken := r.Header.Get(HeaderSessionToken)
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			sess, err := h.sessions.Session(ctx, authToken)
			if err != nil {
				log.Tracef("[invalid session] [auth middleware] %s: %s", r.URL.Path, err)
				pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "not-logged")
				span.RecordError(err)
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), sess)))
		})
	}
}
