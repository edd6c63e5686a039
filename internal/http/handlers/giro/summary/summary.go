// Package summary содержит HTTP-обработчик агрегата прибыли за период.
package summary

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/girolab/backend/internal/http/middlewarectx"
	"github.com/girolab/backend/internal/http/response"
	"github.com/girolab/backend/internal/lib/period"
	"github.com/girolab/backend/internal/lib/sl"
	"github.com/girolab/backend/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает сервис агрегирования прибыли.
type Service interface {
	Summary(ctx context.Context, userUID string, tag period.Tag) (*models.PeriodSummary, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Агрегат прибыли за период
// @Description Разрешает селектор периода и возвращает суммарную прибыль пользователя.
// @Tags Giros
// @Produce  json
// @Param period query string false "Период: today, week, month (по умолчанию today)"
// @Success 200 {object} models.PeriodSummary "Агрегат за период"
// @Failure 400 {object} response.ErrorResponse "Неизвестный период"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /giros/summary [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.giro.summary"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tag := period.Tag(r.URL.Query().Get("period"))
	if tag == "" {
		tag = period.TagToday
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.Summary(r.Context(), userUID, tag)
	if err != nil {
		if errors.Is(err, period.ErrUnknownTag) {
			log.Error("unknown period tag", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown period"))
			return
		}
		log.Error("failed to build summary", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to build summary"))
		return
	}

	log.Info("built summary", slog.String("period", res.Period),
		slog.Float64("total_profit", res.TotalProfit))
	render.JSON(w, r, response.StatusOKWithData(res))
}
