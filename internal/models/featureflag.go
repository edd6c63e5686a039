package models

// FeatureKey — ключ фичи из закрытого перечисления.
// Внешние строки с неизвестными ключами отбрасываются на границе,
// перечисление никогда не расширяется неявно.
type FeatureKey string

// Известные ключи фич.
const (
	FeatureMissionsAI FeatureKey = "missions_ai"
	FeaturePDFExport  FeatureKey = "pdf_export"
	FeatureTaxReports FeatureKey = "tax_reports"
	FeatureTimeline   FeatureKey = "timeline_pro"
	FeatureWeatherPro FeatureKey = "weather_pro"
)

// FeatureFlag описывает настройку одной фичи: включена ли она
// и какие месячные лимиты действуют для бесплатного и Pro тарифов.
// nil-лимит означает отсутствие потолка.
type FeatureFlag struct {
	Key         FeatureKey `json:"key"`
	Enabled     bool       `json:"enabled"`
	FreeLimit   *int       `json:"free_limit"`
	ProLimit    *int       `json:"pro_limit"`
	Description string     `json:"description"`
}

// EntitlementDecision — результат проверки доступа к фиче для пользователя.
type EntitlementDecision struct {
	Key       FeatureKey `json:"key"`
	Allowed   bool       `json:"allowed"`
	Usage     *int       `json:"usage,omitempty"`
	FreeLimit *int       `json:"free_limit,omitempty"`
	ProLimit  *int       `json:"pro_limit,omitempty"`
}
