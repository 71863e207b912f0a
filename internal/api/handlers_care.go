package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	errorvalues "github.com/verdant/sprout/internal/error_values"
	"github.com/verdant/sprout/internal/service"
	"github.com/verdant/sprout/pkg/entity"
	"github.com/verdant/sprout/pkg/httputil"
)

type CreateCareLogRequest struct {
	PlantID  string                  `json:"plant_id"`
	CareType string                  `json:"care_type"`
	Notes    string                  `json:"notes"`
	Photo    string                  `json:"photo"`
	Metadata *entity.CareLogMetadata `json:"metadata"`
}

func (s *Server) CreateCareLog(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("create care log error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req CreateCareLogRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create care log error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	plantID, err := uuid.Parse(req.PlantID)
	if err != nil {
		logger.Error("create care log error: invalid plant id")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid plant id", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	careLog, err := s.careService.LogCare(ctx, uid, &service.CreateCareLogRequest{
		PlantID:  plantID,
		CareType: entity.CareType(req.CareType),
		Notes:    req.Notes,
		Photo:    req.Photo,
		Metadata: req.Metadata,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrInvalidCareType):
			logger.Error("create care log error: unknown care type")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "unknown care type", nil)
		case errors.Is(err, errorvalues.ErrInvalidMetadata):
			logger.Error("create care log error: metadata mismatch")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "metadata doesn't match care type", nil)
		case errors.Is(err, errorvalues.ErrValidation):
			logger.Error("create care log error: invalid care log data")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid care log data", err)
		case errors.Is(err, errorvalues.ErrPlantNotFound), errors.Is(err, errorvalues.ErrWrongOwner):
			logger.Error("create care log error: unexist plant")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "plant doesn't exist", nil)
		default:
			logger.Error("create care log error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while creating care log", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, careLog)
	logger.Info("care log created")
}

func (s *Server) GetPlantCareLogs(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get care logs error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	plantID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("get care logs error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid plant id in path value", nil)
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 50 {
		limit = 10
	}
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	logs, err := s.careService.GetPlantCareLogs(ctx, plantID, uid, service.PaginationOpts{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writePlantLookupError(w, logger, "get care logs", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"plant_id": plantID.String(),
		"page":     page,
		"limit":    limit,
		"logs":     logs,
	})
	logger.Info("care logs provided")
}

func (s *Server) GetPlantAdvice(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get advice error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	plantID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("get advice error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid plant id in path value", nil)
		return
	}
	// The upstream model can be slow; give it room before falling back
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()
	adv, err := s.careService.PlantAdvice(ctx, plantID, uid)
	if err != nil {
		writePlantLookupError(w, logger, "get advice", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, adv)
	logger.Info("advice provided", slog.String("source", adv.Source))
}

func (s *Server) GetReminders(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get reminders error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	reminders, err := s.careService.GetUserReminders(ctx, uid)
	if err != nil {
		logger.Error("getting reminders list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting reminders list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{
		"uid":       uid.String(),
		"reminders": reminders,
	})
	logger.Info("reminders provided")
}

func (s *Server) CompleteReminder(w http.ResponseWriter, r *http.Request) {
	s.transitionReminder(w, r, "complete reminder", s.careService.CompleteReminder)
}

func (s *Server) DismissReminder(w http.ResponseWriter, r *http.Request) {
	s.transitionReminder(w, r, "dismiss reminder", s.careService.DismissReminder)
}

func (s *Server) transitionReminder(w http.ResponseWriter, r *http.Request, op string, transition func(context.Context, uuid.UUID, uuid.UUID) error) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error(op + " error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error(op + " error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid reminder id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = transition(ctx, id, uid)
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrReminderNotFound):
			logger.Error(op + " error: unexist reminder")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "reminder doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrWrongOwner):
			logger.Error(op + " error: reminder has different owner")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "reminder doesn't exist", nil)
		case errors.Is(err, errorvalues.ErrReminderNotPending):
			logger.Error(op + " error: reminder is not pending")
			httputil.WriteErrorResponse(w, http.StatusConflict, "reminder is not pending", nil)
		default:
			logger.Error(op+" error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"message": "reminder updated"})
	logger.Info(op + " done")
}

func (s *Server) GetCareNeeded(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("care needed error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	report, err := s.careService.CareNeeded(ctx, uid)
	if err != nil {
		logger.Error("care needed report error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while building care report", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, report)
	logger.Info("care needed report provided")
}
