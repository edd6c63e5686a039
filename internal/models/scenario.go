package models

import "time"

// StoredScenario представляет сохранённый избранный сценарий симуляции смены.
// Полный набор избранного пользователя заменяется целиком при каждой
// синхронизации, пообъектного upsert нет.
type StoredScenario struct {
	ID          string    `json:"id"`
	UserUID     string    `json:"user_uid"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	Platform    string    `json:"platform"`
	Hours       float64   `json:"hours"`
	Km          float64   `json:"km"`
	AverageFare float64   `json:"average_fare"`
	DemandLevel string    `json:"demand_level"`
	Hint        string    `json:"hint,omitempty"`
	Favorite    bool      `json:"favorite"`
	Tag         string    `json:"tag,omitempty"`
	SavedAt     time.Time `json:"saved_at"`
}

// DummyScenario используется для приёма сценария из JSON-запроса
// при полной замене набора избранного.
type DummyScenario struct {
	ID          string  `json:"id" validate:"omitempty,uuid"`       // ID назначается сервером, если пуст
	Name        string  `json:"name" validate:"required"`           // Название сценария
	City        string  `json:"city" validate:"required"`           // Город
	Platform    string  `json:"platform" validate:"required"`       // Платформа
	Hours       float64 `json:"hours" validate:"required,gt=0"`     // Часы смены
	Km          float64 `json:"km" validate:"gte=0"`                // Километраж
	AverageFare float64 `json:"average_fare" validate:"gte=0"`      // Средний чек
	DemandLevel string  `json:"demand_level" validate:"required"`   // Уровень спроса
	Hint        string  `json:"hint" validate:"omitempty"`          // Подсказка
	Tag         string  `json:"tag" validate:"omitempty"`           // Метка
}

// DummyReplaceFavorites — тело запроса полной замены избранного.
type DummyReplaceFavorites struct {
	Scenarios []DummyScenario `json:"scenarios" validate:"dive"`
}
