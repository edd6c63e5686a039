package repository

import (
	"context"
	"fmt"

	"github.com/girolab/backend/internal/models"
)

// ListFavorites возвращает избранные сценарии пользователя,
// упорядоченные по дате сохранения от новых к старым.
func (s *Storage) ListFavorites(ctx context.Context, userUID string) ([]*models.StoredScenario, error) {
	const op = "storage.ListFavorites"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, city, platform, hours, km, average_fare,
			      demand_level, COALESCE(hint, ''), favorite, COALESCE(tag, ''), saved_at
			  FROM scenarios
			  WHERE user_uid = $1 AND favorite = true
			  ORDER BY saved_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.StoredScenario
	for rows.Next() {
		var item models.StoredScenario
		if err := rows.Scan(&item.ID, &item.UserUID, &item.Name, &item.City,
			&item.Platform, &item.Hours, &item.Km, &item.AverageFare,
			&item.DemandLevel, &item.Hint, &item.Favorite, &item.Tag,
			&item.SavedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ReplaceFavorites заменяет весь набор избранного пользователя: удаляет
// существующие строки и вставляет переданные. Два шага выполняются без
// транзакции, как в исходной системе; интерфейс оставлен единым вызовом,
// чтобы транзакционная реализация была drop-in заменой.
func (s *Storage) ReplaceFavorites(ctx context.Context, userUID string, scenarios []models.StoredScenario) error {
	const op = "storage.ReplaceFavorites"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	deleteQuery := `DELETE FROM scenarios WHERE user_uid = $1 AND favorite = true`
	if _, err := s.DB.ExecContext(ctx, deleteQuery, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(scenarios) == 0 {
		return nil
	}

	insertQuery := `INSERT INTO scenarios (id, user_uid, name, city, platform, hours,
			      km, average_fare, demand_level, hint, favorite, tag, saved_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	for _, sc := range scenarios {
		if _, err := s.DB.ExecContext(ctx, insertQuery,
			sc.ID, userUID, sc.Name, sc.City, sc.Platform, sc.Hours,
			sc.Km, sc.AverageFare, sc.DemandLevel, sc.Hint, sc.Favorite,
			sc.Tag, sc.SavedAt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
