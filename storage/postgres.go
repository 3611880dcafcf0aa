package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var pgTypes = pgtype.NewMap()

// NewPostgresBackend creates and verifies a pgxpool connection pool, applies
// the schema and hands the pool to gorm
func NewPostgresBackend(ctx context.Context, databaseURL string) (*SQLBackend, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig())
	if err != nil {
		sqlDB.Close()
		pool.Close()
		return nil, fmt.Errorf("gorm.Open: %w", err)
	}

	return &SQLBackend{
		db:      db,
		dialect: dialectPostgres,
		closers: []func() error{sqlDB.Close, func() error { pool.Close(); return nil }},
	}, nil
}

// scanTextArray parses a text[] value that reached us in its text form
func scanTextArray(s string, dst *[]string) error {
	return pgTypes.Scan(pgtype.TextArrayOID, pgtype.TextFormatCode, []byte(s), dst)
}
