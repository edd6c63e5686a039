// Package generate содержит HTTP-обработчик генерации налогового отчёта.
package generate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/girolab/backend/internal/http/middlewarectx"
	"github.com/girolab/backend/internal/http/response"
	"github.com/girolab/backend/internal/lib/period"
	"github.com/girolab/backend/internal/lib/sl"
	"github.com/girolab/backend/internal/models"
)

type Handler struct {
	log         *slog.Logger
	service     Service
	entitlement EntitlementService
	validate    *validator.Validate
}

// Service описывает сервис генерации налоговых отчётов.
type Service interface {
	Generate(ctx context.Context, userUID string, start, end time.Time, rateOverride float64, reportType string) (*models.TaxReport, error)
}

// EntitlementService проверяет и списывает квоту на генерацию отчётов.
type EntitlementService interface {
	Check(ctx context.Context, userUID string, key models.FeatureKey, isPro bool) models.EntitlementDecision
	Consume(ctx context.Context, userUID string, key models.FeatureKey) (int, error)
}

// New создает новый Handler с переданными логгером и сервисами.
func New(log *slog.Logger, service Service, entitlement EntitlementService) *Handler {
	return &Handler{
		log:         log,
		service:     service,
		entitlement: entitlement,
		validate:    validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Сгенерировать налоговый отчёт
// @Description Агрегирует прибыль за период, считает сумму налога и сохраняет отчёт со статусом pending. Доступ ограничен квотой фичи tax_reports.
// @Tags Tax
// @Accept  json
// @Produce  json
// @Param request body models.DummyGenerateReport true "Параметры отчёта"
// @Success 200 {object} models.TaxReport "Созданный отчёт"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Квота фичи исчерпана"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при генерации"
// @Router /tax/reports [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tax.generate"

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
	tier, _ := r.Context().Value(middlewarectx.Tier).(string)

	decision := h.entitlement.Check(r.Context(), userUID, models.FeatureTaxReports, tier == models.TierPro)
	if !decision.Allowed {
		log.Warn("tax report generation denied", slog.String("key", string(decision.Key)))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("feature quota exceeded"))
		return
	}

	var req models.DummyGenerateReport
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		log.Error("failed to parse start date", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("start_date must be a date in format 2006-01-02"))
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		log.Error("failed to parse end date", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("end_date must be a date in format 2006-01-02"))
		return
	}
	if end.Before(start) {
		log.Error("period end before start")
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("end_date must not be before start_date"))
		return
	}
	// Конец периода включительный, до последнего момента дня.
	end = period.EndOfDay(end)

	report, err := h.service.Generate(r.Context(), userUID, start, end, req.Rate, req.Type)
	if err != nil {
		log.Error("failed to generate tax report", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not generate tax report"))
		return
	}

	// Квота списывается после успешной генерации, сбой счётчика не
	// откатывает сохранённый отчёт.
	if _, err := h.entitlement.Consume(r.Context(), userUID, models.FeatureTaxReports); err != nil {
		log.Warn("failed to consume tax_reports quota", sl.Err(err))
	}

	log.Info("generated tax report", slog.Int64("id", report.ID))
	render.JSON(w, r, response.StatusOKWithData(report))
}
