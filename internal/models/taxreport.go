package models

import "time"

// Тип налогового документа. Представлен только как отслеживаемый статус,
// реальная налоговая логика ограничивается плоской ставкой.
const (
	ReportTypeDARF = "DARF"
	ReportTypeDAS  = "DAS"
)

// Статусы налогового отчёта. Переход один: pending -> paid.
const (
	ReportStatusPending = "pending"
	ReportStatusPaid    = "paid"
)

// TaxReport представляет сформированный налоговый отчёт за период.
// Сумма — снимок прибыли на момент генерации, с агрегатом не связана.
// Повторная генерация за тот же период создаёт новую запись.
type TaxReport struct {
	ID          int64             `json:"id"`
	UserUID     string            `json:"user_uid"`
	PeriodStart time.Time         `json:"period_start"`
	PeriodEnd   time.Time         `json:"period_end"`
	Type        string            `json:"type"`
	Amount      float64           `json:"amount"`
	Status      string            `json:"status"`
	DueDate     time.Time         `json:"due_date"`
	PdfURL      string            `json:"pdf_url,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// TaxEstimate — неперсистентная оценка налога за текущий месяц.
// При недоступности хранилища возвращается нулевой результат, не ошибка.
type TaxEstimate struct {
	Profit   float64 `json:"profit"`
	Estimate float64 `json:"estimate"`
	Rate     float64 `json:"rate"`
}

// DummyGenerateReport используется для приёма параметров генерации отчёта
// из JSON-запроса. Даты приходят строками в формате 2006-01-02.
type DummyGenerateReport struct {
	StartDate string  `json:"start_date" validate:"required"`           // Начало периода, формат 2006-01-02
	EndDate   string  `json:"end_date" validate:"required"`             // Конец периода, формат 2006-01-02
	Rate      float64 `json:"rate" validate:"omitempty,gt=0"`           // Переопределение ставки
	Type      string  `json:"type" validate:"omitempty,oneof=DARF DAS"` // Тип документа
}
