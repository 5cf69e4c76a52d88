package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql" // Импортируем драйвер MySQL

	"leave-manager/internal/config"
)

// NewConnection создает и возвращает новое подключение к базе данных
func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	log.Println("Попытка подключения к базе данных...")

	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия соединения с БД: %w", err)
	}

	// Проверяем соединение
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка проверки соединения с БД: %w", err)
	}

	log.Println("Успешное подключение к базе данных!")
	// Настраиваем пул соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
