// Package estimate содержит HTTP-обработчик оценки налога за текущий месяц.
package estimate

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/girolab/backend/internal/http/middlewarectx"
	"github.com/girolab/backend/internal/http/response"
	"github.com/girolab/backend/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает сервис оценки налога.
type Service interface {
	Estimate(ctx context.Context, userUID string, rate float64) models.TaxEstimate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Оценить налог за текущий месяц
// @Description Возвращает прибыль с начала месяца и расчётную сумму налога. Оценка никогда не падает: при сбое агрегации возвращаются нули.
// @Tags Tax
// @Produce  json
// @Param rate query number false "Переопределение ставки (доля, например 0.115)"
// @Success 200 {object} models.TaxEstimate "Оценка налога"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /tax/estimate [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tax.estimate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	// Некорректное значение считается отсутствием переопределения:
	// сервис подставит референсную ставку.
	rate, err := strconv.ParseFloat(r.URL.Query().Get("rate"), 64)
	if err != nil {
		rate = 0
	}

	result := h.service.Estimate(r.Context(), userUID, rate)

	log.Info("tax estimated",
		slog.Float64("profit", result.Profit),
		slog.Float64("estimate", result.Estimate))
	render.JSON(w, r, response.StatusOKWithData(result))
}
