package entitlement

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/girolab/backend/internal/lib/sl"
	"github.com/girolab/backend/internal/models"
)

// FlagRepository определяет чтение строк фиче-флагов из удалённого источника.
type FlagRepository interface {
	ListFeatureFlags(ctx context.Context) ([]models.FeatureFlag, error)
}

// UsageCounter описывает месячные счётчики использования фич.
type UsageCounter interface {
	GetUsage(ctx context.Context, userUID, feature string, month time.Time) (int, error)
	IncrUsage(ctx context.Context, userUID, feature string, month time.Time) (int, error)
}

// Service хранит текущий снимок реестра флагов и принимает решения о доступе.
// Снимок заменяется целиком при успешном обновлении (atomic.Pointer),
// читатели всегда видят согласованный реестр без блокировок.
type Service struct {
	repo     FlagRepository
	usage    UsageCounter
	log      *slog.Logger
	registry atomic.Pointer[Registry]
}

// New создаёт сервис с реестром по умолчанию.
func New(repo FlagRepository, usage UsageCounter, log *slog.Logger) *Service {
	s := &Service{
		repo:  repo,
		usage: usage,
		log:   log,
	}
	defaults := Defaults()
	s.registry.Store(&defaults)
	return s
}

// Registry возвращает текущий снимок реестра.
func (s *Service) Registry() Registry {
	return *s.registry.Load()
}

// Refresh подтягивает строки флагов из источника и заменяет снимок целиком.
// Ошибка источника проглатывается: действующий снимок остаётся прежним,
// наружу ничего не поднимается.
func (s *Service) Refresh(ctx context.Context) {
	rows, err := s.repo.ListFeatureFlags(ctx)
	if err != nil {
		s.log.Warn("feature flags refresh failed, keeping current registry", sl.Err(err))
		return
	}
	merged := Merge(rows)
	s.registry.Store(&merged)
	s.log.Info("feature flags registry refreshed", slog.Int("rows", len(rows)))
}

// RunRefresh обновляет реестр сразу и далее по интервалу до отмены контекста.
func (s *Service) RunRefresh(ctx context.Context, interval time.Duration) {
	s.Refresh(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Refresh(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Check принимает решение о доступе пользователя к фиче. Счётчик
// использования читается best-effort: при недоступности Redis решение
// принимается без него (пермиссивная ветка правил).
func (s *Service) Check(ctx context.Context, userUID string, key models.FeatureKey, isPro bool) models.EntitlementDecision {
	registry := s.Registry()

	var usagePtr *int
	count, err := s.usage.GetUsage(ctx, userUID, string(key), time.Now())
	if err != nil {
		s.log.Warn("usage counter unavailable, deciding without usage",
			slog.String("feature", string(key)), sl.Err(err))
	} else {
		usagePtr = &count
	}

	decision := models.EntitlementDecision{
		Key:     key,
		Allowed: Allowed(key, registry, isPro, usagePtr),
		Usage:   usagePtr,
	}
	if flag, ok := registry[key]; ok {
		decision.FreeLimit = flag.FreeLimit
		decision.ProLimit = flag.ProLimit
	}
	return decision
}

// Consume увеличивает месячный счётчик использования фичи и возвращает
// новое значение.
func (s *Service) Consume(ctx context.Context, userUID string, key models.FeatureKey) (int, error) {
	return s.usage.IncrUsage(ctx, userUID, string(key), time.Now())
}

// KnownKey сообщает, входит ли ключ в закрытое перечисление фич.
func KnownKey(key models.FeatureKey) bool {
	_, ok := Defaults()[key]
	return ok
}
