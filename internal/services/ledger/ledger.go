// Package ledger содержит бизнес-логику записи рабочих сессий (giros)
// и агрегирования прибыли по разрешённым периодам.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/girolab/backend/internal/lib/period"
	"github.com/girolab/backend/internal/models"
)

// GiroRepository определяет методы для работы с сессиями в хранилище.
type GiroRepository interface {
	// CreateGiro добавляет новую сессию и возвращает её ID.
	CreateGiro(ctx context.Context, giro models.Giro) (int64, error)
	// ListGiros возвращает сессии пользователя за период.
	ListGiros(ctx context.Context, userUID string, start, end time.Time) ([]*models.Giro, error)
	// SumProfit суммирует прибыль пользователя за период.
	SumProfit(ctx context.Context, userUID string, start, end time.Time) (float64, error)
}

// Service реализует бизнес-логику работы с сессиями.
type Service struct {
	repo GiroRepository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo GiroRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// LogGiro создаёт новую сессию пользователя. Прибыль вычисляется как
// валовый заработок минус пробег, умноженный на стоимость километра.
func (s *Service) LogGiro(ctx context.Context, userUID string, req models.DummyGiro) (int64, error) {
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return 0, fmt.Errorf("invalid date: %w", err)
	}

	giro := models.Giro{
		UserUID:       userUID,
		Date:          date,
		Platform:      req.Platform,
		HoursWorked:   req.HoursWorked,
		KmDriven:      req.KmDriven,
		GrossEarnings: req.GrossEarnings,
		CostPerKm:     req.CostPerKm,
		Profit:        req.GrossEarnings - req.KmDriven*req.CostPerKm,
	}

	id, err := s.repo.CreateGiro(ctx, giro)
	if err != nil {
		return 0, err
	}

	s.log.Info("logged new giro", slog.Int64("id", id), slog.String("platform", giro.Platform))
	return id, nil
}

// List возвращает сессии пользователя за разрешённый период.
func (s *Service) List(ctx context.Context, userUID string, tag period.Tag) ([]*models.Giro, error) {
	r, err := period.ResolveNow(tag)
	if err != nil {
		return nil, err
	}
	return s.repo.ListGiros(ctx, userUID, r.Start, r.End)
}

// TotalProfit суммирует прибыль пользователя за произвольный диапазон дат
// с включёнными границами. Пустой набор записей даёт 0; ошибка хранилища
// поднимается вызывающему без локального восстановления.
func (s *Service) TotalProfit(ctx context.Context, userUID string, start, end time.Time) (float64, error) {
	return s.repo.SumProfit(ctx, userUID, start, end)
}

// Summary разрешает селектор периода и возвращает агрегат прибыли
// по получившемуся диапазону.
func (s *Service) Summary(ctx context.Context, userUID string, tag period.Tag) (*models.PeriodSummary, error) {
	r, err := period.ResolveNow(tag)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.SumProfit(ctx, userUID, r.Start, r.End)
	if err != nil {
		return nil, err
	}
	return &models.PeriodSummary{
		Period:      string(tag),
		Start:       r.Start,
		End:         r.End,
		TotalProfit: total,
	}, nil
}
