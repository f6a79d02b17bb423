package storage

import (
	"database/sql"
	"fmt"
	"regexp"
)

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

// DB is a migrated relational database shared by the SQL repositories.
type DB struct {
	db      *sql.DB
	dialect dialect
}

func (d *DB) Close() error {
	return d.db.Close()
}

var placeholder = regexp.MustCompile(`\$\d+`)

// rebind turns the $n placeholders used in this package into the form the
// driver understands. Queries use every placeholder once and in order.
func (d *DB) rebind(query string) string {
	if d.dialect == dialectPostgres {
		return query
	}
	return placeholder.ReplaceAllString(query, "?")
}

func (d *DB) migrate(wanted []string) error {
	query := `CREATE TABLE IF NOT EXISTS migration
("id" SERIAL PRIMARY KEY, "query" TEXT)`
	if d.dialect == dialectSQLite {
		query = `CREATE TABLE IF NOT EXISTS migration
("id" INTEGER PRIMARY KEY AUTOINCREMENT, "query" TEXT)`
	}
	if _, err := d.db.Exec(query); err != nil {
		return err
	}

	// find existing
	rows, err := d.db.Query(`SELECT query FROM migration ORDER BY id`)
	if err != nil {
		return err
	}

	existing := []string{}
	for rows.Next() {
		var query string
		if err := rows.Scan(&query); err != nil {
			rows.Close()
			return err
		}
		existing = append(existing, query)
	}
	rows.Close()

	// compare
	missing, err := compareMigrations(wanted, existing)
	if err != nil {
		return err
	}

	// execute missing
	for _, query := range missing {
		if _, err := d.db.Exec(query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		// register
		if _, err := d.db.Exec(d.rebind(`
INSERT INTO migration
(query) VALUES ($1)
`), query); err != nil {
			return err
		}
	}

	return nil
}

func compareMigrations(wanted, existing []string) ([]string, error) {
	needed := []string{}
	if len(wanted) < len(existing) {
		return []string{}, fmt.Errorf("not enough migrations")
	}

	for i, want := range wanted {
		switch {
		case i >= len(existing):
			needed = append(needed, want)
		case want == existing[i]:
			// do nothing
		case want != existing[i]:
			return []string{}, fmt.Errorf("incompatible migration: %v", want)
		}
	}

	return needed, nil
}
