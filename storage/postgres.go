package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

type PostgresInfo struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

func (p PostgresInfo) DSN() string {
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s", p.Host, p.Port, p.User, p.Password, p.Database, sslMode)
}

// NewPostgres connects with either a full dsn or, when dsn is empty, the
// separate connection parts, and brings the schema up to date.
func NewPostgres(dsn string, info PostgresInfo) (*DB, error) {
	if dsn == "" {
		dsn = info.DSN()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to reach postgres: %w", err)
	}

	p := &DB{db: db, dialect: dialectPostgres}
	if err := p.migrate(pgMigration); err != nil {
		db.Close()
		return nil, err
	}

	return p, nil
}
