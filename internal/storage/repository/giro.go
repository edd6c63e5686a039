package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/girolab/backend/internal/models"
)

// CreateGiro вставляет новую рабочую сессию и возвращает её ID.
func (s *Storage) CreateGiro(ctx context.Context, giro models.Giro) (int64, error) {
	const op = "storage.CreateGiro"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO giros (user_uid, date, platform, hours_worked, km_driven,
			      gross_earnings, cost_per_km, profit)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		giro.UserUID, giro.Date, giro.Platform, giro.HoursWorked, giro.KmDriven,
		giro.GrossEarnings, giro.CostPerKm, giro.Profit).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListGiros возвращает сессии пользователя за период [start, end]
// с включёнными границами, от новых к старым.
func (s *Storage) ListGiros(ctx context.Context, userUID string, start, end time.Time) ([]*models.Giro, error) {
	const op = "storage.ListGiros"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, date, platform, hours_worked, km_driven,
			      gross_earnings, cost_per_km, COALESCE(profit, 0)
			  FROM giros
			  WHERE user_uid = $1 AND date >= $2 AND date <= $3
			  ORDER BY date DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Giro
	for rows.Next() {
		var item models.Giro
		if err := rows.Scan(&item.ID, &item.UserUID, &item.Date, &item.Platform,
			&item.HoursWorked, &item.KmDriven, &item.GrossEarnings,
			&item.CostPerKm, &item.Profit); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SumProfit суммирует прибыль сессий пользователя за период [start, end]
// с включёнными границами. NULL-прибыль считается нулём; отсутствие записей
// даёт 0, а не ошибку.
func (s *Storage) SumProfit(ctx context.Context, userUID string, start, end time.Time) (float64, error) {
	const op = "storage.SumProfit"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COALESCE(SUM(COALESCE(profit, 0)), 0)
			  FROM giros
			  WHERE user_uid = $1 AND date >= $2 AND date <= $3`
	var total float64
	row := s.DB.QueryRowContext(ctx, query, userUID, start, end)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}
