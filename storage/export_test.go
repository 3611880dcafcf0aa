package storage

import (
	"context"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DryRunSelect renders the statement the Postgres backend would run for q
// without touching a database
func DryRunSelect(q *Query) (string, []any, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost dbname=jobboard"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		return "", nil, err
	}
	b := &SQLBackend{db: db, dialect: dialectPostgres}

	tx, err := b.selectTx(context.Background(), q)
	if err != nil {
		return "", nil, err
	}
	var rows []map[string]any
	stmt := tx.Find(&rows).Statement
	return stmt.SQL.String(), stmt.Vars, nil
}

// SQLitePredicate exposes the SQLite rendering of a single predicate
func SQLitePredicate(p Predicate) (string, []any, error) {
	b := &SQLBackend{dialect: dialectSQLite}
	return b.predicate(p)
}
