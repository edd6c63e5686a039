// Package list содержит HTTP-обработчик списка сессий за период.
package list

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

// Service описывает сервис чтения сессий.
type Service interface {
	List(ctx context.Context, userUID string, tag period.Tag) ([]*models.Giro, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список сессий за период
// @Description Возвращает сессии пользователя за период today, week или month.
// @Tags Giros
// @Produce  json
// @Param period query string false "Период: today, week, month (по умолчанию week)"
// @Success 200 {object} map[string]any "Список сессий"
// @Failure 400 {object} response.ErrorResponse "Неизвестный период"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /giros/list [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.giro.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tag := period.Tag(r.URL.Query().Get("period"))
	if tag == "" {
		tag = period.TagWeek
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.List(r.Context(), userUID, tag)
	if err != nil {
		if errors.Is(err, period.ErrUnknownTag) {
			log.Error("unknown period tag", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown period"))
			return
		}
		log.Error("failed to list giros", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list giros"))
		return
	}

	log.Info("listed giros", slog.Int("count", len(res)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(res),
		"giros":      res,
	}))
}
