// Package markpaid содержит HTTP-обработчик отметки отчёта как оплаченного.
package markpaid

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/girolab/backend/internal/http/middlewarectx"
	"github.com/girolab/backend/internal/http/response"
	"github.com/girolab/backend/internal/lib/sl"
	"github.com/girolab/backend/internal/models"
	"github.com/girolab/backend/internal/storage/repository"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает сервис смены статуса отчёта.
type Service interface {
	MarkPaid(ctx context.Context, userUID string, id int64) (*models.TaxReport, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отметить отчёт оплаченным
// @Description Переводит отчёт в статус paid. Повторная отметка проходит без ошибки.
// @Tags Tax
// @Produce  json
// @Param id path int true "ID отчёта"
// @Success 200 {object} models.TaxReport "Обновлённый отчёт"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Отчёт не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при обновлении"
// @Router /tax/reports/{id}/paid [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tax.markpaid"
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

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid report id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid report id"))
		return
	}

	// Отчёт другого пользователя неотличим от несуществующего.
	report, err := h.service.MarkPaid(r.Context(), userUID, id)
	if errors.Is(err, repository.ErrNotFound) {
		log.Error("tax report not found", slog.Int64("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("tax report not found"))
		return
	}
	if err != nil {
		log.Error("failed to mark tax report paid", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not mark tax report paid"))
		return
	}

	log.Info("tax report marked paid", slog.Int64("id", report.ID))
	render.JSON(w, r, response.StatusOKWithData(report))
}
