// Package favorites содержит HTTP-обработчик чтения избранных сценариев.
package favorites

import (
	"context"
	"log/slog"
	"net/http"

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

// Service описывает сервис избранных сценариев.
type Service interface {
	FetchFavorites(ctx context.Context, userUID string) []*models.StoredScenario
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Избранные сценарии
// @Description Возвращает избранные сценарии пользователя. При сбое хранилища отдаётся пустой список, не ошибка.
// @Tags Scenarios
// @Produce  json
// @Success 200 {array} models.StoredScenario "Избранные сценарии"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /scenarios/favorites [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.scenario.favorites"
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

	scenarios := h.service.FetchFavorites(r.Context(), userUID)

	log.Info("fetched favorite scenarios", slog.Int("count", len(scenarios)))
	render.JSON(w, r, response.StatusOKWithData(scenarios))
}
