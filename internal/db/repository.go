package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("not found")
var ErrConflict = errors.New("already exists")
var ErrForbidden = errors.New("not allowed")

// DBConnection is satisfied by *pgxpool.Pool and by pgxmock pools.
type DBConnection interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgx.Row
}

// Features records which optional tables are provisioned. Functions backed by
// a disabled feature return empty results instead of querying.
type Features struct {
	Notifications bool
	Analytics     bool
}

type Repository struct {
	DBConnection
	features Features
	log      logrus.FieldLogger
}

//go:embed queries/detect-features.sql
var detectFeaturesQuery string

func DetectFeatures(ctx context.Context, conn DBConnection) (features Features, err error) {
	err = conn.QueryRow(ctx, detectFeaturesQuery).Scan(&features.Notifications, &features.Analytics)
	if err != nil {
		err = fmt.Errorf("failed to detect optional tables: %w", err)
	}
	return
}

// NewRepository probes the schema for optional tables once and returns a
// repository bound to conn.
func NewRepository(ctx context.Context, conn DBConnection, log logrus.FieldLogger) (Repository, error) {
	features, err := DetectFeatures(ctx, conn)
	if err != nil {
		return Repository{}, err
	}
	return NewRepositoryWithFeatures(conn, features, log), nil
}

func NewRepositoryWithFeatures(conn DBConnection, features Features, log logrus.FieldLogger) Repository {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return Repository{DBConnection: conn, features: features, log: log}
}

func (repo Repository) Features() Features {
	return repo.features
}

func (repo Repository) WithinTransaction(ctx context.Context, op func(pgx.Tx) error) (err error) {
	tx, err := repo.DBConnection.Begin(ctx)
	if err != nil {
		return
	}
	defer tx.Rollback(ctx)
	err = op(tx)
	if err != nil {
		return
	}
	err = tx.Commit(ctx)
	return
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

// collectOne maps the first row, returning ErrNotFound when there is none.
func collectOne[T any](rows pgx.Rows, err error) (item T, outErr error) {
	if err != nil {
		outErr = fmt.Errorf("failed to execute query: %w", err)
		return
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		outErr = fmt.Errorf("failed to map rows: %w", err)
		return
	}
	if len(items) == 0 {
		outErr = ErrNotFound
		return
	}
	item = items[0]
	return
}

func collectAll[T any](rows pgx.Rows, err error) ([]T, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("failed to map rows: %w", err)
	}
	return items, nil
}
