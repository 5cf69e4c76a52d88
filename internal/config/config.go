package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Defaults BalanceDefaults
}

// ServerConfig - конфигурация сервера
type ServerConfig struct {
	Port string
}

// DatabaseConfig - конфигурация базы данных
type DatabaseConfig struct {
	DSN            string // Data Source Name (e.g., "user:password@tcp(localhost:3306)/leave_manager?parseTime=true")
	MigrationsPath string // Путь к файлам миграций
}

// JWTConfig - конфигурация JWT
type JWTConfig struct {
	Secret string
}

// BalanceDefaults - дефолтные остатки дней, выдаваемые при регистрации
type BalanceDefaults struct {
	VacationDays int
	SickDays     int
	PersonalDays int
}

// Load загружает конфигурацию из переменных окружения (.env подхватывается, если есть)
func Load() (*Config, error) {
	// .env не обязателен, в проде переменные приходят из окружения
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", ":8080"),
		},
		Database: DatabaseConfig{
			DSN:            os.Getenv("DATABASE_DSN"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
		Defaults: BalanceDefaults{
			VacationDays: getEnvInt("DEFAULT_VACATION_DAYS", 22),
			SickDays:     getEnvInt("DEFAULT_SICK_DAYS", 10),
			PersonalDays: getEnvInt("DEFAULT_PERSONAL_DAYS", 5),
		},
	}

	if cfg.Database.DSN == "" {
		return nil, errors.New("необходимо указать DATABASE_DSN")
	}
	if cfg.JWT.Secret == "" {
		return nil, errors.New("необходимо указать JWT_SECRET")
	}
	if cfg.Server.Port == "" {
		return nil, errors.New("необходимо указать порт сервера")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
