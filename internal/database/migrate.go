package database

import (
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"leave-manager/internal/config"
)

// RunMigrations применяет все up-миграции к базе данных
func RunMigrations(cfg config.DatabaseConfig) error {
	migrationsURL := "file://" + cfg.MigrationsPath
	migrator, err := migrate.New(migrationsURL, "mysql://"+cfg.DSN)
	if err != nil {
		return fmt.Errorf("ошибка инициализации мигратора: %w", err)
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("Миграции: изменений нет")
			return nil
		}
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}
	log.Println("Миграции успешно применены")
	return nil
}
