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

type CreatePlantRequest struct {
	Name                    string `json:"name"`
	Species                 string `json:"species"`
	WaterFrequencyDays      int    `json:"water_frequency_days"`
	FertilizerFrequencyDays int    `json:"fertilizer_frequency_days"`
}

type UpdatePlantRequest struct {
	Name                    *string `json:"name"`
	Species                 *string `json:"species"`
	WaterFrequencyDays      *int    `json:"water_frequency_days"`
	FertilizerFrequencyDays *int    `json:"fertilizer_frequency_days"`
}

type GetPlantsResponse struct {
	UserID string          `json:"uid"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
	Plants []*entity.Plant `json:"plants"`
}

func (s *Server) CreatePlant(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("create plant error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	var req CreatePlantRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("create plant error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	plant, err := s.plantsService.CreatePlant(ctx, uid, &service.CreatePlantRequest{
		Name:                    req.Name,
		Species:                 req.Species,
		WaterFrequencyDays:      req.WaterFrequencyDays,
		FertilizerFrequencyDays: req.FertilizerFrequencyDays,
	})
	if err != nil {
		switch {
		case errors.Is(err, errorvalues.ErrValidation):
			logger.Error("create plant error: invalid plant data")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid plant data", err)
		case errors.Is(err, errorvalues.ErrUserNotFound):
			logger.Error("create plant error: unexist user")
			httputil.WriteErrorResponse(w, http.StatusNotFound, "couldn't create plant: user doesn't exists", nil)
		default:
			logger.Error("create plant error: service error", slog.String("error", err.Error()))
			httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while creating plant", nil)
		}
		return
	}
	httputil.WriteJSONResponse(w, http.StatusCreated, plant)
	logger.Info("plant created")
}

func (s *Server) GetPlants(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get plants error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
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
	plants, err := s.plantsService.GetUserPlants(ctx, uid, service.PaginationOpts{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		logger.Error("getting plants list error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "error while getting plants list", nil)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, GetPlantsResponse{
		UserID: uid.String(),
		Page:   page,
		Limit:  limit,
		Plants: plants,
	})
	logger.Info("plants provided")
}

func (s *Server) GetPlant(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("get plant error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("get plant error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid plant id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	plant, err := s.plantsService.GetPlant(ctx, id, uid)
	if err != nil {
		writePlantLookupError(w, logger, "get plant", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, plant)
	logger.Info("plant provided")
}

func (s *Server) UpdatePlant(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("update plant error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("update plant error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid plant id in path value", nil)
		return
	}
	var req UpdatePlantRequest
	defer r.Body.Close()
	err = sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		logger.Error("update plant error: invalid request body")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	plant, err := s.plantsService.UpdatePlant(ctx, id, uid, &service.UpdatePlantRequest{
		Name:                    req.Name,
		Species:                 req.Species,
		WaterFrequencyDays:      req.WaterFrequencyDays,
		FertilizerFrequencyDays: req.FertilizerFrequencyDays,
	})
	if err != nil {
		if errors.Is(err, errorvalues.ErrValidation) {
			logger.Error("update plant error: invalid plant data")
			httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid plant data", err)
			return
		}
		writePlantLookupError(w, logger, "update plant", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, plant)
	logger.Info("plant updated")
}

func (s *Server) DeletePlant(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())
	uid, err := GetUIDFromContext(r)
	if err != nil {
		logger.Error("plant deletion error: unauthorized")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logger.Error("plant deletion error: invalid id in path value")
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "invalid plant id in path value", nil)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err = s.plantsService.DeletePlant(ctx, id, uid)
	if err != nil {
		writePlantLookupError(w, logger, "plant deletion", err)
		return
	}
	httputil.WriteJSONResponse(w, http.StatusOK, map[string]any{"message": "plant deleted"})
	logger.Info("plant deleted")
}

// writePlantLookupError maps plant access failures; a foreign plant reports
// the same 404 as a missing one so ids cannot be probed.
func writePlantLookupError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, errorvalues.ErrPlantNotFound):
		logger.Error(op + " error: unexist plant")
		httputil.WriteErrorResponse(w, http.StatusNotFound, "plant doesn't exist", nil)
	case errors.Is(err, errorvalues.ErrWrongOwner):
		logger.Error(op + " error: plant has different owner")
		httputil.WriteErrorResponse(w, http.StatusNotFound, "plant doesn't exist", nil)
	default:
		logger.Error(op+" error: service error", slog.String("error", err.Error()))
		httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error", nil)
	}
}
