// Package repository реализует хранилище данных на основе PostgreSQL
// для рабочих сессий (giros), налоговых отчётов, избранных сценариев,
// фиче-флагов и пользователей.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrNotFound возвращается, когда запрошенная запись отсутствует в хранилище.
var ErrNotFound = errors.New("record not found")

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с доменными таблицами.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'giros'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table giros missing or query error: %w", err)
	}
	return nil
}
