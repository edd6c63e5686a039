package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/girolab/backend/internal/models"
)

// ListFeatureFlags возвращает строки фиче-флагов из таблицы feature_flags.
// Фильтрация по закрытому перечислению ключей выполняется на уровне сервиса,
// хранилище отдаёт строки как есть.
func (s *Storage) ListFeatureFlags(ctx context.Context) ([]models.FeatureFlag, error) {
	const op = "storage.ListFeatureFlags"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT key, enabled, free_limit, pro_limit, COALESCE(description, '')
			  FROM feature_flags`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.FeatureFlag
	for rows.Next() {
		var item models.FeatureFlag
		var key string
		var freeLimit, proLimit sql.NullInt64
		if err := rows.Scan(&key, &item.Enabled, &freeLimit, &proLimit,
			&item.Description); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.Key = models.FeatureKey(key)
		if freeLimit.Valid {
			v := int(freeLimit.Int64)
			item.FreeLimit = &v
		}
		if proLimit.Valid {
			v := int(proLimit.Int64)
			item.ProLimit = &v
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
