// Package check содержит HTTP-обработчик проверки доступа к фиче.
package check

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/girolab/backend/internal/http/middlewarectx"
	"github.com/girolab/backend/internal/http/response"
	"github.com/girolab/backend/internal/models"
	"github.com/girolab/backend/internal/services/entitlement"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает сервис проверки доступа к фичам.
type Service interface {
	Check(ctx context.Context, userUID string, key models.FeatureKey, isPro bool) models.EntitlementDecision
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Проверить доступ к фиче
// @Description Возвращает решение о доступе к фиче с учётом тарифа и месячной квоты.
// @Tags Features
// @Produce  json
// @Param key path string true "Ключ фичи"
// @Success 200 {object} models.EntitlementDecision "Решение о доступе"
// @Failure 400 {object} response.ErrorResponse "Неизвестный ключ фичи"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /features/{key} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feature.check"
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
	tier, _ := r.Context().Value(middlewarectx.Tier).(string)

	decision := h.service.Check(r.Context(), userUID, key, tier == models.TierPro)

	log.Info("feature checked", slog.String("key", string(key)),
		slog.Bool("allowed", decision.Allowed))
	render.JSON(w, r, response.StatusOKWithData(decision))
}
