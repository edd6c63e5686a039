// Package sl содержит вспомогательные функции для логгера slog.
// Все HTTP-обработчики и сервисы girolab логируют ошибки через sl.Err,
// чтобы поле "error" имело единый вид во всем приложении.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to generate tax report", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
