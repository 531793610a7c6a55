package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var Migrations embed.FS

const LatestVersion = "latest"

// gooseLogger routes goose output through logrus.
type gooseLogger struct {
	log logrus.FieldLogger
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatalf(strings.TrimSpace(format), v...)
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Infof(strings.TrimSpace(format), v...)
}

func (l gooseLogger) Fatal(v ...interface{}) {
	l.log.Fatal(v...)
}

func (l gooseLogger) Print(v ...interface{}) {
	l.log.Info(v...)
}

func (l gooseLogger) Println(v ...interface{}) {
	l.log.Info(v...)
}

func openMigrationDB(connectionURL string, log logrus.FieldLogger) (*sql.DB, error) {
	db, err := goose.OpenDBWithDriver("pgx", connectionURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect with database: %w", err)
	}
	goose.SetBaseFS(Migrations)
	goose.SetLogger(gooseLogger{log: log})
	err = goose.SetDialect("postgres")
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to set dialect: %w", err), db.Close())
	}
	return db, nil
}

func closeMigrationDB(db *sql.DB, err error) error {
	dbErr := db.Close()
	if dbErr == nil {
		return err
	}
	dbErr = fmt.Errorf("failed to close database connection: %w", dbErr)
	if err == nil {
		return dbErr
	}
	return errors.Join(err, dbErr)
}

// MigrateTo applies migrations up to version, which is either a migration
// number or "latest". The notifications and analytics tables arrive with
// version 2; a schema migrated only to 1 runs with those features disabled.
func MigrateTo(ctx context.Context, connectionURL string, version string, log logrus.FieldLogger) (err error) {
	db, err := openMigrationDB(connectionURL, log)
	if err != nil {
		return
	}
	defer func() { err = closeMigrationDB(db, err) }()

	if version == LatestVersion || version == "" {
		err = goose.UpContext(ctx, db, "migrations")
		return
	}
	versionInt, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		err = fmt.Errorf("failed to parse version: %w", err)
		return
	}
	err = goose.UpToContext(ctx, db, "migrations", versionInt)
	return
}

// MigrationVersion reports the currently applied schema version.
func MigrationVersion(connectionURL string, log logrus.FieldLogger) (version int64, err error) {
	db, err := openMigrationDB(connectionURL, log)
	if err != nil {
		return
	}
	defer func() { err = closeMigrationDB(db, err) }()
	version, err = goose.GetDBVersion(db)
	return
}
