package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/girolab/backend/internal/models"
)

// CreateTaxReport вставляет новый налоговый отчёт и возвращает сохранённую
// запись вместе с назначенным хранилищем ID. Защиты от дублей нет:
// повторный вызов с теми же аргументами создаёт независимый отчёт.
func (s *Storage) CreateTaxReport(ctx context.Context, report models.TaxReport) (*models.TaxReport, error) {
	const op = "storage.CreateTaxReport"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	metadata, err := json.Marshal(report.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO tax_reports (user_uid, period_start, period_end, type,
			      amount, status, due_date, pdf_url, metadata)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id, created_at`
	row := s.DB.QueryRowContext(ctx, query,
		report.UserUID, report.PeriodStart, report.PeriodEnd, report.Type,
		report.Amount, report.Status, report.DueDate, report.PdfURL, metadata)
	if err := row.Scan(&report.ID, &report.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &report, nil
}

// ListTaxReports возвращает отчёты пользователя, отфильтрованные по периоду,
// от новых периодов к старым. Нулевые границы фильтра не ограничивают выборку.
func (s *Storage) ListTaxReports(ctx context.Context, userUID string, start, end *time.Time) ([]*models.TaxReport, error) {
	const op = "storage.ListTaxReports"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, period_start, period_end, type, amount,
			      status, due_date, COALESCE(pdf_url, ''), metadata, created_at
			  FROM tax_reports
			  WHERE user_uid = $1
			    AND ($2::timestamptz IS NULL OR period_start >= $2)
			    AND ($3::timestamptz IS NULL OR period_end <= $3)
			  ORDER BY period_start DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.TaxReport
	for rows.Next() {
		item, err := scanTaxReport(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkTaxReportPaid переводит отчёт пользователя в статус paid и возвращает
// обновлённую запись. Чужой или несуществующий отчёт — ErrNotFound.
// Повторная отметка уже оплаченного отчёта не является ошибкой.
func (s *Storage) MarkTaxReportPaid(ctx context.Context, userUID string, id int64) (*models.TaxReport, error) {
	const op = "storage.MarkTaxReportPaid"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE tax_reports
			  SET status = $1
			  WHERE id = $2 AND user_uid = $3
			  RETURNING id, user_uid, period_start, period_end, type, amount,
			      status, due_date, COALESCE(pdf_url, ''), metadata, created_at`
	row := s.DB.QueryRowContext(ctx, query, models.ReportStatusPaid, id, userUID)
	item, err := scanTaxReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaxReport(row rowScanner) (*models.TaxReport, error) {
	var item models.TaxReport
	var metadata []byte
	if err := row.Scan(&item.ID, &item.UserUID, &item.PeriodStart, &item.PeriodEnd,
		&item.Type, &item.Amount, &item.Status, &item.DueDate, &item.PdfURL,
		&metadata, &item.CreatedAt); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &item.Metadata); err != nil {
			return nil, err
		}
	}
	return &item, nil
}
