package runtime

import (
	"database/sql"
	"fmt"

	"github.com/TechXTT/tidbreader/internal/core"
	"github.com/TechXTT/tidbreader/pkg/config"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// Connect opens a database handle for one of the supported drivers.
// sql.Open does not dial; the first ping or query does.
func Connect(driver, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DSN is empty")
	}
	switch driver {
	case config.DriverMySQL, config.DriverPostgres, config.DriverPgx:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	return sql.Open(driver, dsn)
}

// DialectFor returns the placeholder style the driver expects.
func DialectFor(driver string) core.Dialect {
	if driver == config.DriverMySQL {
		return core.Question
	}
	return core.Dollar
}
