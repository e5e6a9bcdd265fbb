package storage

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Supported database kinds.
const (
	KindMySQL    = "mysql"
	KindPostgres = "postgres"
	KindSQLite   = "sqlite3"
)

// ConnectionOptions describes how to reach the catalog database.
type ConnectionOptions struct {
	Kind     string
	DSN      string
	Host     string
	User     string
	Password string
	Name     string
	Path     string
	SSLMode  string
	Port     int
}

// NormalizeKind maps accepted spellings to a supported kind.
func NormalizeKind(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "mysql", "mariadb", "":
		return KindMySQL, nil
	case "postgres", "postgresql", "pgx":
		return KindPostgres, nil
	case "sqlite3", "sqlite":
		return KindSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", kind)
	}
}

// driverName returns the database/sql driver registered for a kind.
func driverName(kind string) string {
	if kind == KindPostgres {
		return "pgx"
	}
	return kind
}

// DataSourceName builds the driver DSN. An explicit DSN wins over the
// individual fields.
func (o ConnectionOptions) DataSourceName() (string, error) {
	kind, err := NormalizeKind(o.Kind)
	if err != nil {
		return "", err
	}

	switch kind {
	case KindMySQL:
		return o.mysqlDSN()
	case KindPostgres:
		return o.postgresDSN()
	default:
		return o.sqliteDSN()
	}
}

// mysqlDSN always enables clientFoundRows so that rewriting an unchanged
// value still reports one affected row.
func (o ConnectionOptions) mysqlDSN() (string, error) {
	var cfg *mysql.Config
	if o.DSN != "" {
		parsed, err := mysql.ParseDSN(o.DSN)
		if err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		cfg = parsed
	} else {
		if err := validateString(o.Name, "database name"); err != nil {
			return "", err
		}
		cfg = mysql.NewConfig()
		cfg.User = o.User
		cfg.Passwd = o.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(defaultString(o.Host, "localhost"), strconv.Itoa(defaultInt(o.Port, 3306)))
		cfg.DBName = o.Name
	}
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

func (o ConnectionOptions) postgresDSN() (string, error) {
	if o.DSN != "" {
		return o.DSN, nil
	}
	if err := validateString(o.Name, "database name"); err != nil {
		return "", err
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(defaultString(o.Host, "localhost"), strconv.Itoa(defaultInt(o.Port, 5432))),
		Path:   "/" + o.Name,
	}
	if o.User != "" {
		if o.Password != "" {
			u.User = url.UserPassword(o.User, o.Password)
		} else {
			u.User = url.User(o.User)
		}
	}
	q := url.Values{}
	q.Set("sslmode", defaultString(o.SSLMode, "disable"))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (o ConnectionOptions) sqliteDSN() (string, error) {
	if o.DSN != "" {
		return o.DSN, nil
	}
	if err := validateString(o.Path, "database path"); err != nil {
		return "", err
	}
	return SQLiteDSN(o.Path), nil
}

// SQLiteDSN opens an existing sqlite file read-write; a missing file is an
// error rather than a new empty database.
func SQLiteDSN(path string) string {
	return "file:" + path + "?mode=rw&_busy_timeout=5000"
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func defaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
