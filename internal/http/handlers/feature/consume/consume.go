// Package consume содержит HTTP-обработчик списания использования фичи.
package consume

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/girolab/backend/internal/http/middlewarectx"
	"github.com/girolab/backend/internal/http/response"
	"github.com/girolab/backend/internal/lib/sl"
	"github.com/girolab/backend/internal/models"
	"github.com/girolab/backend/internal/services/entitlement"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает сервис списания использования фич.
type Service interface {
	Consume(ctx context.Context, userUID string, key models.FeatureKey) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Списать использование фичи
// @Description Увеличивает месячный счётчик использования фичи и возвращает новое значение.
// @Tags Features
// @Produce  json
// @Param key path string true "Ключ фичи"
// @Success 200 {object} map[string]int "Новое значение счётчика"
// @Failure 400 {object} response.ErrorResponse "Неизвестный ключ фичи"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /features/{key}/consume [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feature.consume"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	key := models.FeatureKey(chi.URLParam(r, "key"))
	if !entitlement.KnownKey(key) {
		log.Error("unknown feature key", slog.String("key", string(key)))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown feature key"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	usage, err := h.service.Consume(r.Context(), userUID, key)
	if err != nil {
		log.Error("failed to consume feature usage", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to consume feature usage"))
		return
	}

	log.Info("feature usage consumed", slog.String("key", string(key)),
		slog.Int("usage", usage))
	render.JSON(w, r, response.StatusOKWithData(map[string]int{"usage": usage}))
}
