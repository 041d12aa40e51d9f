package database

import (
	"database/sql"
	"regexp"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect describes one supported SQL engine: how to connect, how to write
// placeholders and how the migration tracking table looks
type Dialect struct {
	driver        string
	migrationsDir string
	// numbered placeholders ($1, $2) instead of ?
	numbered bool
	// inserts report their id through RETURNING instead of LastInsertId
	returningID    bool
	maxOpenConns   int
	pragmas        []string
	trackingColumn [3]string // id, filename and executed_at column definitions
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// NewSQLiteDialect returns the SQLite dialect. WAL lets the admin report read
// while a participant row is being appended.
func NewSQLiteDialect() Dialect {
	return Dialect{
		driver:        "sqlite3",
		migrationsDir: "sqlite",
		maxOpenConns:  4,
		pragmas: []string{
			"PRAGMA journal_mode=WAL;",
			"PRAGMA busy_timeout=5000;",
			"PRAGMA foreign_keys=ON;",
		},
		trackingColumn: [3]string{
			"id INTEGER PRIMARY KEY AUTOINCREMENT",
			"filename TEXT UNIQUE NOT NULL",
			"executed_at DATETIME DEFAULT CURRENT_TIMESTAMP",
		},
	}
}

// NewPostgresDialect returns the PostgreSQL dialect
func NewPostgresDialect() Dialect {
	return Dialect{
		driver:        "postgres",
		migrationsDir: "postgres",
		numbered:      true,
		returningID:   true,
		maxOpenConns:  10,
		trackingColumn: [3]string{
			"id BIGSERIAL PRIMARY KEY",
			"filename TEXT UNIQUE NOT NULL",
			"executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP",
		},
	}
}

// NewMySQLDialect returns the MySQL dialect
func NewMySQLDialect() Dialect {
	return Dialect{
		driver:        "mysql",
		migrationsDir: "mysql",
		maxOpenConns:  10,
		trackingColumn: [3]string{
			"id BIGINT AUTO_INCREMENT PRIMARY KEY",
			"filename VARCHAR(255) UNIQUE NOT NULL",
			"executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)",
		},
	}
}

// DriverName returns the driver name for sql.Open
func (d Dialect) DriverName() string {
	return d.driver
}

// DSN returns the data source name for the connection. MySQL DSNs get
// multiStatements and parseTime switched on, the migration runner needs the former.
func (d Dialect) DSN(config DialectConfig) string {
	switch d.driver {
	case "sqlite3":
		return config.Path
	case "mysql":
		if config.URL == "" {
			return ""
		}
		cfg, err := mysql.ParseDSN(config.URL)
		if err != nil {
			// sql.Open reports the parse error
			return config.URL
		}
		cfg.MultiStatements = true
		cfg.ParseTime = true
		return cfg.FormatDSN()
	default:
		return config.URL
	}
}

// RewriteQuery converts ? placeholders when the engine numbers them
func (d Dialect) RewriteQuery(query string) string {
	if !d.numbered {
		return query
	}
	return rewritePlaceholdersToNumbered(query)
}

// SupportsLastInsertId returns true if the driver supports LastInsertId()
func (d Dialect) SupportsLastInsertId() bool {
	return !d.returningID
}

// ConfigureConnection applies pool limits and engine settings
func (d Dialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(d.maxOpenConns)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(time.Minute)
	if d.driver != "sqlite3" {
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	for _, pragma := range d.pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return err
		}
	}
	return nil
}

// MigrationsSubdir names the embedded migrations directory for this engine
func (d Dialect) MigrationsSubdir() string {
	return d.migrationsDir
}

// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
func (d Dialect) CreateMigrationsTableQuery() string {
	return "CREATE TABLE IF NOT EXISTS schema_migrations (" +
		d.trackingColumn[0] + ", " +
		d.trackingColumn[1] + ", " +
		d.trackingColumn[2] + ")"
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
