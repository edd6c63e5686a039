// Package duedate вычисляет срок оплаты налогового отчёта по концу периода.
package duedate

import "time"

// ForPeriodEnd возвращает срок оплаты для периода, оканчивающегося end:
// 20-е число месяца, содержащего end. Если это 20-е строго раньше самого end
// (период уже перешагнул 20-е своего месяца), срок сдвигается на месяц вперёд.
// Сдвиг привязан именно к концу периода, а не к моменту генерации: для давно
// закрытых периодов срок может оказаться в прошлом, это ожидаемо.
func ForPeriodEnd(end time.Time) time.Time {
	due := time.Date(end.Year(), end.Month(), 20, 0, 0, 0, 0, end.Location())
	if due.Before(end) {
		due = due.AddDate(0, 1, 0)
	}
	return due
}
