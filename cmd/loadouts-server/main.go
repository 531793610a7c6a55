package main

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/technopolitica/loadouts/internal/db"
	"github.com/technopolitica/loadouts/internal/logging"
	"github.com/technopolitica/loadouts/internal/server"
)

func loadPublicKey(publicKeyURL *url.URL) (publicKey *rsa.PublicKey, err error) {
	switch publicKeyURL.Scheme {
	case "file":
		filePath := publicKeyURL.Path
		var pemBytes []byte
		pemBytes, err = os.ReadFile(filePath)
		if err != nil {
			return
		}
		pemBlock, _ := pem.Decode(pemBytes)
		if pemBlock == nil {
			err = fmt.Errorf("public key file %s does not contain a PEM block", filePath)
			return
		}
		if pemBlock.Type != "RSA PUBLIC KEY" {
			err = fmt.Errorf("invalid public key of type %s", pemBlock.Type)
			return
		}
		publicKey, err = x509.ParsePKCS1PublicKey(pemBlock.Bytes)
		return
	default:
		err = fmt.Errorf("unsupported public key source: %s", publicKeyURL.Scheme)
		return
	}
}

var rootCmd = &cobra.Command{
	Use:           "loadouts-server",
	Short:         "Serve the loadouts JSON API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.String("db-url", "", "URL-formatted connection string to the database server. Currently only postgres:// URLS are supported.")
	flags.Int("port", 0, "port to listen on")
	flags.String("public-key", "", "URL to the public key used to sign auth tokens. Currently only file:// protocols are supported.")
	flags.String("log-level", "info", "minimum level of emitted log entries")
	flags.String("log-format", logging.FormatJSON, "log output format, json or text")
	flags.Duration("request-timeout", server.DefaultRequestTimeout, "maximum time spent handling a single request")

	viper.SetEnvPrefix("LOADOUTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(flags)
}

func serve(ctx context.Context) error {
	logger, err := logging.New(viper.GetString("log-level"), viper.GetString("log-format"), os.Stderr)
	if err != nil {
		return err
	}

	dbURL := viper.GetString("db-url")
	if dbURL == "" {
		return errors.New("--db-url is required")
	}
	rawPublicKeyURL := viper.GetString("public-key")
	if rawPublicKeyURL == "" {
		return errors.New("--public-key is required")
	}
	publicKeyURL, err := url.Parse(rawPublicKeyURL)
	if err != nil {
		return fmt.Errorf("failed to parse public key as URL: %w", err)
	}
	if publicKeyURL.Path == "" {
		return errors.New("public key url cannot have an empty path")
	}
	publicKey, err := loadPublicKey(publicKeyURL)
	if err != nil {
		return fmt.Errorf("failed to read public key: %w", err)
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	repo, err := db.NewRepository(ctx, pool, logger)
	if err != nil {
		return err
	}
	features := repo.Features()
	logger.WithField("notifications", features.Notifications).
		WithField("analytics", features.Analytics).
		Info("detected optional features")

	router := server.New(repo, *publicKey, logger, viper.GetDuration("request-timeout"))
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", viper.GetInt("port")))
	if err != nil {
		return fmt.Errorf("failed to listen on specified address: %w", err)
	}

	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	done := make(chan error, 1)
	go func() {
		done <- httpServer.Serve(listener)
	}()
	logger.Infof("listening on http://%s...", listener.Addr())

	select {
	case err = <-done:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
