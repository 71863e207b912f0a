package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	errorvalues "github.com/verdant/sprout/internal/error_values"
	"github.com/verdant/sprout/internal/service"
	"github.com/verdant/sprout/pkg/entity"
	"github.com/verdant/sprout/pkg/httputil"
)

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User      *entity.User `json:"user"`
	CSRFToken string       `json:"csrf_token"`
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req RegisterRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("registering error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	user, err := s.userService.Register(ctx, &service.RegisterRequest{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	}, ClientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrRateLimited):
			logger.Error("registering error: rate limited")
			httputil.WriteErrorResponse(w, http.StatusTooManyRequests, err.Error(), nil)
			return
		case errors.Is(err, errorvalues.ErrUserExists):
			logger.Error("registering error: existed user")
			httputil.WriteErrorResponse(w, http.StatusConflict, "user with such name or email already exists", nil)
			return
		case errors.Is(err, errorvalues.ErrValidation):
			logger.Error("registering error: invalid credentials shape")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid registration data", err)
			return
		default:
			logger.Error("registering error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error during registration", nil)
			return
		}
	}
	// Registration logs the user straight in: no separate login round-trip
	token, session, err := s.sessionService.Create(ctx, user.ID)
	if err != nil {
		logger.Error("registering error: establishing session error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error establishing session", nil)
		return
	}
	setSessionCookie(w, token, session.ExpiresAt)
	httputil.WriteJSONResponse(w, http.StatusCreated, AuthResponse{
		User:      user,
		CSRFToken: session.CSRFToken,
	})
	logger.Info("successful registration")
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	var req LoginRequest
	defer r.Body.Close()
	err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("login error: invalid body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	user, err := s.userService.Login(ctx, req.Username, req.Password, ClientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrRateLimited):
			logger.Error("login error: rate limited")
			httputil.WriteErrorResponse(w, http.StatusTooManyRequests, err.Error(), nil)
			return
		case errors.Is(err, errorvalues.ErrWrongCredentials):
			// Same status and message whether the username or the password was wrong
			logger.Error("login error: wrong credentials")
			httputil.WriteErrorResponse(w, http.StatusUnauthorized, "invalid username or password", nil)
			return
		default:
			logger.Error("login error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error during login", nil)
			return
		}
	}
	token, session, err := s.sessionService.Create(ctx, user.ID)
	if err != nil {
		logger.Error("login error: establishing session error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error establishing session", nil)
		return
	}
	setSessionCookie(w, token, session.ExpiresAt)
	httputil.WriteJSONResponse(w, http.StatusOK, AuthResponse{
		User:      user,
		CSRFToken: session.CSRFToken,
	})
	logger.Info("successful login")
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		logger.Error("logout error: no session cookie")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	err = s.sessionService.Destroy(ctx, cookie.Value)
	if err != nil && !errors.Is(err, errorvalues.ErrSessionNotFound) {
		logger.Error("logout error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error during logout", nil)
		return
	}
	clearSessionCookie(w)
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"message": "logged out"})
	logger.Info("successful logout")
}

func setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
