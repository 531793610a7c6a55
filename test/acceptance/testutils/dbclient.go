package testutils

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"

	"github.com/jackc/pgx/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega/gexec"
)

func migrateToLatest(ctx context.Context, migrateBinaryPath string, dbURL string) (err error) {
	migrateCmd := exec.Command(
		migrateBinaryPath,
		"--db-url", dbURL,
		"migrate",
		"--to", "latest")
	session, err := gexec.Start(migrateCmd, ginkgo.GinkgoWriter, ginkgo.GinkgoWriter)
	if err != nil {
		err = fmt.Errorf("failed to run command: %w", err)
		return
	}
	select {
	case <-session.Exited:
		if session.ExitCode() != 0 {
			err = fmt.Errorf("exited with non-zero code %d", session.ExitCode())
		}
	case <-ctx.Done():
		session.Kill()
		err = fmt.Errorf("context cancelled: %w", context.Cause(ctx))
	}
	return
}

// withDatabase returns connString pointed at another database on the same
// server.
func withDatabase(connString string, database string) (string, error) {
	parsed, err := url.Parse(connString)
	if err != nil {
		return "", fmt.Errorf("failed to parse connection string: %w", err)
	}
	parsed.Path = "/" + database
	return parsed.String(), nil
}

type DBClient struct {
	conn     *pgx.Conn
	adminURL string
}

type TestDB struct {
	Name             string
	ConnectionString string
}

func NewDBClient(ctx context.Context, connString string) (client *DBClient, err error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		err = fmt.Errorf("failed to connect to database: %w", err)
		return
	}
	client = &DBClient{conn: conn, adminURL: connString}
	return
}

const sourceDBName = "loadouts_template"

func (client DBClient) InitializeSourceDB(ctx context.Context, migrateBinaryPath string) (err error) {
	_, err = client.conn.Exec(ctx, fmt.Sprintf(`DROP DATABASE IF EXISTS "%s"`, sourceDBName))
	if err != nil {
		return fmt.Errorf("failed to drop stale source database: %w", err)
	}
	_, err = client.conn.Exec(ctx, fmt.Sprintf(`CREATE DATABASE "%s"`, sourceDBName))
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	sourceURL, err := withDatabase(client.adminURL, sourceDBName)
	if err != nil {
		return
	}
	err = migrateToLatest(ctx, migrateBinaryPath, sourceURL)
	if err != nil {
		err = fmt.Errorf("failed to migrate database to latest schema version: %w", err)
	}
	return
}

func (client DBClient) CleanupSourceDB(ctx context.Context) (err error) {
	_, err = client.conn.Exec(ctx, fmt.Sprintf(`DROP DATABASE IF EXISTS "%s"`, sourceDBName))
	if err != nil {
		err = fmt.Errorf("failed to drop source database: %w", err)
	}
	return
}

// CreateTestDB copies the migrated source database into a fresh database for a
// single parallel ginkgo process.
func (client DBClient) CreateTestDB(ctx context.Context) (testDB TestDB, err error) {
	testDB.Name = fmt.Sprintf("loadouts_%d", ginkgo.GinkgoParallelProcess())
	_, err = client.conn.Exec(ctx, fmt.Sprintf(`DROP DATABASE IF EXISTS "%s" WITH (FORCE)`, testDB.Name))
	if err != nil {
		err = fmt.Errorf("failed to drop stale test database: %w", err)
		return
	}
	_, err = client.conn.Exec(ctx, fmt.Sprintf(`CREATE DATABASE "%s" WITH TEMPLATE "%s"`, testDB.Name, sourceDBName))
	if err != nil {
		err = fmt.Errorf("failed to copy database from source: %w", err)
		return
	}
	testDB.ConnectionString, err = withDatabase(client.adminURL, testDB.Name)
	return
}

func (client DBClient) CleanupTestDB(ctx context.Context, testDBName string) (err error) {
	_, err = client.conn.Exec(ctx, fmt.Sprintf(`DROP DATABASE IF EXISTS "%s" WITH (FORCE)`, testDBName))
	if err != nil {
		err = fmt.Errorf("failed to drop database: %w", err)
	}
	return
}

func (client DBClient) Close(ctx context.Context) error {
	return client.conn.Close(ctx)
}
