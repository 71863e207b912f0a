package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	errorvalues "github.com/verdant/sprout/internal/error_values"
	"github.com/verdant/sprout/pkg/entity"
	"github.com/verdant/sprout/pkg/httputil"
)

var (
	requestIDKContextKey = "Request-ID"
	loggerContextKey     = "Logger"
	uidContextKey        = "User-ID"
	sessionContextKey    = "Session"
)

const (
	sessionCookieName = "sprout_session"
	csrfHeaderName    = "X-CSRF-Token"
)

func (s *Server) RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.New()
		ctx := context.WithValue(r.Context(), requestIDKContextKey, reqID.String())
		r = r.WithContext(ctx)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) SettingUpLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.Default()
		reqID, ok := r.Context().Value(requestIDKContextKey).(string)
		if ok && reqID != "" {
			logger = logger.With(slog.String("request_id", reqID))
		}
		logger = logger.With(slog.String("from", r.RemoteAddr))
		ctx := context.WithValue(r.Context(), loggerContextKey, logger)
		r = r.WithContext(ctx)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) LoggerExtensionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLoggerFromCtx(r.Context())
		userID, ok := r.Context().Value(uidContextKey).(uuid.UUID)
		if ok {
			logger = logger.With(slog.String("uid", userID.String()))
		}
		ctx := context.WithValue(r.Context(), loggerContextKey, logger)
		r = r.WithContext(ctx)
		next.ServeHTTP(w, r)
	})
}

// SessionAuthMiddleware gates protected routes on a live session cookie. The
// generic message does not distinguish a missing cookie from an expired one.
func (s *Server) SessionAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLoggerFromCtx(r.Context())
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			logger.Error("auth failed: no session cookie")
			httputil.WriteErrorResponse(w, http.StatusUnauthorized, "authorization failed: invalid session", nil)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), time.Second*5)
		defer cancel()
		session, err := s.sessionService.Validate(ctx, cookie.Value)
		if err != nil {
			switch {
			case errors.Is(err, errorvalues.ErrSessionNotFound), errors.Is(err, errorvalues.ErrSessionExpired):
				logger.Error("auth failed: dead session")
				httputil.WriteErrorResponse(w, http.StatusUnauthorized, "authorization failed: invalid session", nil)
				return
			default:
				logger.Error("auth failed: internal error while validating session", slog.String("error", err.Error()))
				httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error validating session", nil)
				return
			}
		}
		reqCtx := context.WithValue(r.Context(), uidContextKey, session.UserID)
		reqCtx = context.WithValue(reqCtx, sessionContextKey, session)
		r = r.WithContext(reqCtx)
		next.ServeHTTP(w, r)
	})
}

// CSRFMiddleware rejects state-changing requests whose anti-forgery header
// does not match the session's token. Safe methods pass through.
func (s *Server) CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		logger := GetLoggerFromCtx(r.Context())
		session, err := GetSessionFromContext(r)
		if err != nil {
			logger.Error("csrf check without session")
			httputil.WriteErrorResponse(w, http.StatusUnauthorized, "authorization failed: invalid session", nil)
			return
		}
		if err = s.sessionService.VerifyCSRF(session, r.Header.Get(csrfHeaderName)); err != nil {
			logger.Error("csrf check failed")
			httputil.WriteErrorResponse(w, http.StatusForbidden, "missing or invalid anti-forgery token", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetLoggerFromCtx(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerContextKey).(*slog.Logger)
	if ok {
		return logger
	}
	return slog.Default()
}

func GetUIDFromContext(r *http.Request) (uuid.UUID, error) {
	uid, ok := r.Context().Value(uidContextKey).(uuid.UUID)
	if !ok {
		return uuid.UUID{}, errors.New("uid invalid or doesn't exists")
	}
	return uid, nil
}

func GetSessionFromContext(r *http.Request) (*entity.Session, error) {
	session, ok := r.Context().Value(sessionContextKey).(*entity.Session)
	if !ok || session == nil {
		return nil, errors.New("session invalid or doesn't exists")
	}
	return session, nil
}

// ClientIP strips the port from RemoteAddr for the rate limiter.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
