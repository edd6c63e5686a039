// Package period разрешает символьный селектор периода (today, week, month)
// в конкретный диапазон дат. Используется агрегатором прибыли и налоговым
// движком для выборки сессий за период.
package period

import (
	"errors"
	"fmt"
	"time"
)

// Tag — селектор периода из закрытого перечисления.
type Tag string

// Поддерживаемые селекторы периода.
const (
	TagToday Tag = "today"
	TagWeek  Tag = "week"
	TagMonth Tag = "month"
)

// ErrUnknownTag возвращается при неизвестном селекторе периода.
// Перечисление закрыто, поэтому ошибка достижима только через строковую
// границу HTTP-слоя.
var ErrUnknownTag = errors.New("unknown period tag")

// Range — диапазон дат с включёнными границами. Инвариант: Start <= End.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Resolve возвращает диапазон дат для селектора относительно момента now
// в его локальном календаре. today — текущий календарный день целиком,
// week — скользящее окно из 7 дней, включая сегодня (не календарная неделя),
// month — с 1-го числа текущего месяца по конец сегодняшнего дня
// (один день, если сегодня 1-е).
func Resolve(tag Tag, now time.Time) (Range, error) {
	const op = "period.Resolve"

	end := EndOfDay(now)
	switch tag {
	case TagToday:
		return Range{Start: startOfDay(now), End: end}, nil
	case TagWeek:
		return Range{Start: startOfDay(now.AddDate(0, 0, -6)), End: end}, nil
	case TagMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Range{Start: start, End: end}, nil
	}
	return Range{}, fmt.Errorf("%s: %w: %q", op, ErrUnknownTag, tag)
}

// ResolveNow — Resolve относительно текущего момента.
func ResolveNow(tag Tag) (Range, error) {
	return Resolve(tag, time.Now())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay возвращает последний момент календарного дня t.
// Все границы периодов в выборках включительные, до конца дня.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
