// Package models содержит доменные структуры приложения: рабочие сессии
// водителя (giros), налоговые отчёты, сохранённые сценарии и фиче-флаги,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Giro представляет одну залогированную рабочую сессию водителя.
// Запись неизменяема после создания: пути обновления или удаления нет,
// агрегаты всегда пересчитываются по исходным записям.
type Giro struct {
	ID            int64     `json:"id"`
	UserUID       string    `json:"user_uid"`
	Date          time.Time `json:"date"`           // Момент сессии
	Platform      string    `json:"platform"`       // Платформа (uber, ifood и т.д.)
	HoursWorked   float64   `json:"hours_worked"`   // Отработанные часы
	KmDriven      float64   `json:"km_driven"`      // Пробег за сессию, км
	GrossEarnings float64   `json:"gross_earnings"` // Валовый заработок
	CostPerKm     float64   `json:"cost_per_km"`    // Стоимость километра
	Profit        float64   `json:"profit"`         // Чистая прибыль сессии
}

// DummyGiro используется для приёма данных сессии из JSON-запроса,
// прежде чем конвертировать их в Giro. Дата приходит строкой в формате RFC3339.
type DummyGiro struct {
	Date          string  `json:"date" validate:"required"`                  // Момент сессии, RFC3339
	Platform      string  `json:"platform" validate:"required"`              // Платформа
	HoursWorked   float64 `json:"hours_worked" validate:"required,gt=0"`     // Часы (>0)
	KmDriven      float64 `json:"km_driven" validate:"gte=0"`                // Километры (>=0)
	GrossEarnings float64 `json:"gross_earnings" validate:"required,gte=0"`  // Заработок (>=0)
	CostPerKm     float64 `json:"cost_per_km" validate:"gte=0"`              // Стоимость км (>=0)
}

// PeriodSummary — агрегат прибыли пользователя за разрешённый период.
type PeriodSummary struct {
	Period      string    `json:"period"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	TotalProfit float64   `json:"total_profit"`
}
