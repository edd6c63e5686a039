// Package tax реализует налоговый движок: безопасную оценку налога за текущий
// месяц и формирование персистентных отчётов DARF/DAS со сроком оплаты.
package tax

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/girolab/backend/internal/lib/duedate"
	"github.com/girolab/backend/internal/lib/period"
	"github.com/girolab/backend/internal/lib/sl"
	"github.com/girolab/backend/internal/models"
)

// DefaultRate — референсная плоская ставка, применяемая при отсутствии
// или некорректном переопределении.
const DefaultRate = 0.115

// Repository определяет методы хранилища, нужные налоговому движку.
type Repository interface {
	// SumProfit суммирует прибыль пользователя за период.
	SumProfit(ctx context.Context, userUID string, start, end time.Time) (float64, error)
	// CreateTaxReport сохраняет новый отчёт и возвращает его с назначенным ID.
	CreateTaxReport(ctx context.Context, report models.TaxReport) (*models.TaxReport, error)
	// ListTaxReports возвращает отчёты пользователя по фильтру периода.
	ListTaxReports(ctx context.Context, userUID string, start, end *time.Time) ([]*models.TaxReport, error)
	// MarkTaxReportPaid переводит отчёт пользователя в статус paid.
	MarkTaxReportPaid(ctx context.Context, userUID string, id int64) (*models.TaxReport, error)
}

// Publisher публикует события о созданных отчётах.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// ReportEvent — сообщение о созданном отчёте, публикуемое в шину.
type ReportEvent struct {
	ReportID int64     `json:"report_id"`
	UserUID  string    `json:"user_uid"`
	Type     string    `json:"type"`
	Amount   float64   `json:"amount"`
	DueDate  time.Time `json:"due_date"`
}

// Service реализует оценку и генерацию налоговых отчётов.
type Service struct {
	repo       Repository
	publisher  Publisher
	routingKey string
	log        *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, publisher Publisher, routingKey string, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		publisher:  publisher,
		routingKey: routingKey,
		log:        log,
	}
}

// Estimate возвращает оценку налога за текущий месяц (с 1-го числа по
// сегодняшний день). Ставка <= 0 заменяется референсной. Оценка best-effort:
// при ошибке агрегации возвращается нулевой результат, ошибка не поднимается.
func (s *Service) Estimate(ctx context.Context, userUID string, rate float64) models.TaxEstimate {
	if rate <= 0 {
		rate = DefaultRate
	}

	r, err := period.ResolveNow(period.TagMonth)
	if err != nil {
		// Недостижимо: TagMonth входит в закрытое перечисление.
		s.log.Error("failed to resolve month period", sl.Err(err))
		return models.TaxEstimate{Rate: rate}
	}

	profit, err := s.repo.SumProfit(ctx, userUID, r.Start, r.End)
	if err != nil {
		s.log.Warn("tax estimate degraded to zero, aggregation failed", sl.Err(err))
		return models.TaxEstimate{Rate: rate}
	}

	return models.TaxEstimate{
		Profit:   profit,
		Estimate: roundAmount(profit, rate),
		Rate:     rate,
	}
}

// Generate агрегирует прибыль за [start, end], вычисляет сумму налога по
// эффективной ставке и сохраняет отчёт со статусом pending. Ошибка хранилища
// поднимается вызывающему: этот путь не best-effort. Защиты от повторной
// генерации за тот же период намеренно нет.
func (s *Service) Generate(ctx context.Context, userUID string, start, end time.Time, rateOverride float64, reportType string) (*models.TaxReport, error) {
	profit, err := s.repo.SumProfit(ctx, userUID, start, end)
	if err != nil {
		return nil, err
	}

	rate := DefaultRate
	if rateOverride > 0 {
		rate = rateOverride
	}
	if reportType == "" {
		reportType = models.ReportTypeDARF
	}

	report := models.TaxReport{
		UserUID:     userUID,
		PeriodStart: start,
		PeriodEnd:   end,
		Type:        reportType,
		Amount:      roundAmount(profit, rate),
		Status:      models.ReportStatusPending,
		DueDate:     duedate.ForPeriodEnd(end),
		Metadata: map[string]any{
			"total_profit": profit,
			"tax_rate":     rate,
		},
	}

	stored, err := s.repo.CreateTaxReport(ctx, report)
	if err != nil {
		return nil, err
	}
	s.log.Info("generated tax report",
		slog.Int64("id", stored.ID),
		slog.String("type", stored.Type),
		slog.Float64("amount", stored.Amount))

	if s.publisher != nil {
		event := ReportEvent{
			ReportID: stored.ID,
			UserUID:  stored.UserUID,
			Type:     stored.Type,
			Amount:   stored.Amount,
			DueDate:  stored.DueDate,
		}
		if err := s.publisher.Publish(s.routingKey, event); err != nil {
			s.log.Warn("failed to publish report event", sl.Err(err))
		}
	}

	return stored, nil
}

// List возвращает отчёты пользователя, от новых периодов к старым.
func (s *Service) List(ctx context.Context, userUID string, start, end *time.Time) ([]*models.TaxReport, error) {
	return s.repo.ListTaxReports(ctx, userUID, start, end)
}

// MarkPaid переводит отчёт пользователя в статус paid. Чужой отчёт недоступен
// и равнозначен отсутствующему. Повторная отметка уже оплаченного отчёта
// проходит без ошибки.
func (s *Service) MarkPaid(ctx context.Context, userUID string, id int64) (*models.TaxReport, error) {
	return s.repo.MarkTaxReportPaid(ctx, userUID, id)
}

// roundAmount считает profit*rate с банковской точностью decimal
// и округлением до двух знаков.
func roundAmount(profit, rate float64) float64 {
	return decimal.NewFromFloat(profit).
		Mul(decimal.NewFromFloat(rate)).
		Round(2).
		InexactFloat64()
}
