// Package list содержит HTTP-обработчик получения списка налоговых отчётов.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/girolab/backend/internal/http/middlewarectx"
	"github.com/girolab/backend/internal/http/response"
	"github.com/girolab/backend/internal/lib/sl"
	"github.com/girolab/backend/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает сервис чтения налоговых отчётов.
type Service interface {
	List(ctx context.Context, userUID string, start, end *time.Time) ([]*models.TaxReport, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список налоговых отчётов
// @Description Возвращает отчёты пользователя, от новых периодов к старым, с опциональным фильтром по началу периода.
// @Tags Tax
// @Produce  json
// @Param start query string false "Начало фильтра (2006-01-02)"
// @Param end query string false "Конец фильтра (2006-01-02)"
// @Success 200 {array} models.TaxReport "Список отчётов"
// @Failure 400 {object} response.ErrorResponse "Некорректная дата фильтра"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении"
// @Router /tax/reports/list [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tax.list"
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

	start, err := parseDate(r.URL.Query().Get("start"))
	if err != nil {
		log.Error("invalid start filter", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid start date, expected 2006-01-02"))
		return
	}
	end, err := parseDate(r.URL.Query().Get("end"))
	if err != nil {
		log.Error("invalid end filter", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid end date, expected 2006-01-02"))
		return
	}

	reports, err := h.service.List(r.Context(), userUID, start, end)
	if err != nil {
		log.Error("failed to list tax reports", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list tax reports"))
		return
	}

	log.Info("listed tax reports", slog.Int("count", len(reports)))
	render.JSON(w, r, response.StatusOKWithData(reports))
}

// parseDate превращает пустую строку в nil-фильтр.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
