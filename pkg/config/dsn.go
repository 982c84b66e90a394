package config

import (
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// DSN renders the data source name for the configured driver.
func (c *Config) DSN() string {
	switch c.Driver {
	case DriverPostgres, DriverPgx:
		return c.postgresDSN()
	default:
		return c.mysqlDSN()
	}
}

func (c *Config) mysqlDSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	mc.ParseTime = true
	mc.TLSConfig = mysqlTLS(c.SSLMode)
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// postgresDSN builds a keyword/value DSN understood by both lib/pq and pgx.
func (c *Config) postgresDSN() string {
	parts := []string{
		"host=" + quoteDSNValue(c.Host),
		"port=" + strconv.Itoa(c.Port),
		"user=" + quoteDSNValue(c.User),
		"dbname=" + quoteDSNValue(c.Database),
		"sslmode=" + postgresSSL(c.Driver, c.SSLMode),
	}
	if c.Password != "" {
		parts = append(parts, "password="+quoteDSNValue(c.Password))
	}
	return strings.Join(parts, " ")
}

func mysqlTLS(mode string) string {
	switch mode {
	case SSLDisabled:
		return "false"
	case SSLRequired:
		return "skip-verify"
	case SSLVerifyCA, SSLVerifyIdentity:
		return "true"
	default:
		return "preferred"
	}
}

// lib/pq has no opportunistic mode, so PREFERRED falls back to its own
// default of "require" there.
func postgresSSL(driver, mode string) string {
	switch mode {
	case SSLDisabled:
		return "disable"
	case SSLRequired:
		return "require"
	case SSLVerifyCA:
		return "verify-ca"
	case SSLVerifyIdentity:
		return "verify-full"
	default:
		if driver == DriverPgx {
			return "prefer"
		}
		return "require"
	}
}

func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
