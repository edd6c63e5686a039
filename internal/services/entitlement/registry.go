// Package entitlement содержит реестр фиче-флагов и логику проверки доступа
// к платным фичам с учётом тарифа пользователя и месячной квоты.
package entitlement

import (
	"github.com/girolab/backend/internal/models"
)

// Registry отображает ключ фичи на её настройку. Ключи уникальны и берутся
// только из закрытого перечисления models.FeatureKey.
type Registry map[models.FeatureKey]models.FeatureFlag

// Defaults возвращает встроенный реестр по умолчанию. Им инициализируется
// снимок при старте, и он же остаётся действующим, если удалённый источник
// флагов недоступен.
func Defaults() Registry {
	return Registry{
		models.FeatureMissionsAI: {
			Key:         models.FeatureMissionsAI,
			Enabled:     true,
			FreeLimit:   intPtr(5),
			ProLimit:    intPtr(100),
			Description: "AI missions and suggestions",
		},
		models.FeaturePDFExport: {
			Key:         models.FeaturePDFExport,
			Enabled:     true,
			FreeLimit:   intPtr(0),
			ProLimit:    nil,
			Description: "Export reports to PDF",
		},
		models.FeatureTaxReports: {
			Key:         models.FeatureTaxReports,
			Enabled:     true,
			FreeLimit:   intPtr(1),
			ProLimit:    nil,
			Description: "Formal DARF/DAS tax reports",
		},
		models.FeatureTimeline: {
			Key:         models.FeatureTimeline,
			Enabled:     true,
			FreeLimit:   intPtr(0),
			ProLimit:    nil,
			Description: "Extended earnings timeline",
		},
		models.FeatureWeatherPro: {
			Key:         models.FeatureWeatherPro,
			Enabled:     true,
			FreeLimit:   intPtr(3),
			ProLimit:    nil,
			Description: "Hourly weather for shift planning",
		},
	}
}

// Merge возвращает копию реестра по умолчанию, в которой распознанные по
// ключу строки заменены целиком данными из rows. Неизвестные ключи
// отбрасываются, частичного пообъектного слияния нет: совпавший ключ
// получает удалённую запись как есть, последняя строка по ключу побеждает.
func Merge(rows []models.FeatureFlag) Registry {
	merged := Defaults()
	for _, row := range rows {
		if _, known := merged[row.Key]; !known {
			continue
		}
		merged[row.Key] = row
	}
	return merged
}

// Allowed принимает решение о доступе к фиче.
// Правила, в порядке применения:
//  1. Ключ отсутствует в реестре или фича выключена — отказ.
//  2. Pro-тариф — доступ без учёта квот (ProLimit здесь информационный).
//  3. Есть конечный FreeLimit и известно использование — доступ при usage < limit.
//  4. Есть FreeLimit <= 0, а использование неизвестно — отказ (нулевая квота).
//  5. Иначе — доступ (потолка нет либо использование не передано).
func Allowed(key models.FeatureKey, registry Registry, isPro bool, usage *int) bool {
	flag, ok := registry[key]
	if !ok || !flag.Enabled {
		return false
	}
	if isPro {
		return true
	}
	if flag.FreeLimit != nil {
		if usage != nil {
			return *usage < *flag.FreeLimit
		}
		if *flag.FreeLimit <= 0 {
			return false
		}
	}
	return true
}

func intPtr(v int) *int { return &v }
