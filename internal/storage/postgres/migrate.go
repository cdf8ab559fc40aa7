package postgres

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate применяет up-миграции из каталога dir к базе dbURL (postgres://...).
// Отсутствие новых миграций ошибкой не считается.
func Migrate(dbURL, dir string) error {
	const op = "storage/postgres/Migrate"

	u, err := url.Parse(dbURL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	// Драйвер pgx/v5 у migrate регистрируется под схемой pgx5.
	u.Scheme = "pgx5"

	m, err := migrate.New("file://"+dir, u.String())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
