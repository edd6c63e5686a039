// Package scenario реализует синхронизацию избранных сценариев симуляции:
// чтение набора пользователя и его полную замену.
package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/girolab/backend/internal/lib/sl"
	"github.com/girolab/backend/internal/models"
)

// Repository определяет методы хранилища для избранных сценариев.
type Repository interface {
	// ListFavorites возвращает избранное пользователя от новых к старым.
	ListFavorites(ctx context.Context, userUID string) ([]*models.StoredScenario, error)
	// ReplaceFavorites заменяет весь набор избранного пользователя.
	ReplaceFavorites(ctx context.Context, userUID string, scenarios []models.StoredScenario) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует бизнес-логику синхронизации избранного.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// FetchFavorites возвращает избранные сценарии пользователя, упорядоченные по
// дате сохранения от новых к старым. Чтение best-effort: пустой userUID или
// ошибка хранилища дают пустой набор, ошибка наружу не поднимается.
func (s *Service) FetchFavorites(ctx context.Context, userUID string) []*models.StoredScenario {
	if userUID == "" {
		return []*models.StoredScenario{}
	}

	var cached []*models.StoredScenario
	cacheKey := favoritesKey(userUID)
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read favorites cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return cached
	}

	result, err := s.repo.ListFavorites(ctx, userUID)
	if err != nil {
		s.log.Warn("failed to fetch favorites, returning empty set", sl.Err(err))
		return []*models.StoredScenario{}
	}
	if result == nil {
		result = []*models.StoredScenario{}
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache favorites", slog.String("key", cacheKey), sl.Err(err))
	}
	return result
}

// ReplaceFavorites заменяет весь набор избранного пользователя переданным.
// Сценариям без ID назначается новый UUID, момент сохранения — текущий.
// Это деструктивная полная замена: последняя запись побеждает целиком,
// сверки параллельных сохранений нет. Ошибка хранилища поднимается.
func (s *Service) ReplaceFavorites(ctx context.Context, userUID string, scenarios []models.DummyScenario) error {
	if userUID == "" {
		return fmt.Errorf("scenario.ReplaceFavorites: empty user uid")
	}

	now := time.Now()
	stored := make([]models.StoredScenario, 0, len(scenarios))
	for _, sc := range scenarios {
		id := sc.ID
		if id == "" {
			id = uuid.NewString()
		}
		stored = append(stored, models.StoredScenario{
			ID:          id,
			UserUID:     userUID,
			Name:        sc.Name,
			City:        sc.City,
			Platform:    sc.Platform,
			Hours:       sc.Hours,
			Km:          sc.Km,
			AverageFare: sc.AverageFare,
			DemandLevel: sc.DemandLevel,
			Hint:        sc.Hint,
			Favorite:    true,
			Tag:         sc.Tag,
			SavedAt:     now,
		})
	}

	if err := s.repo.ReplaceFavorites(ctx, userUID, stored); err != nil {
		return err
	}
	s.log.Info("replaced favorite scenarios",
		slog.String("user_uid", userUID), slog.Int("count", len(stored)))

	cacheKey := favoritesKey(userUID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate favorites cache", slog.String("key", cacheKey), sl.Err(err))
	}
	return nil
}

func favoritesKey(userUID string) string {
	return fmt.Sprintf("favorites:%s", userUID)
}
