/*
Copyright 2025 SmartTech Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caddyserver/certmagic"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/smarttech/storefront/api"
	"github.com/smarttech/storefront/config"
	trace "github.com/smarttech/storefront/internal/traces"
)

const shutdownGrace = 15 * time.Second

/*
newTLSServer builds an HTTPS server whose certificates CertMagic obtains and
renews. Without a domain the certificate is issued for localhost.
*/
func newTLSServer(ctx context.Context, r *gin.Engine, conf config.ServerConfig) (*http.Server, error) {
	certmagic.DefaultACME.Agreed = true
	certmagic.DefaultACME.Email = conf.Email
	cfg := certmagic.NewDefault()
	cfg.Storage = &certmagic.FileStorage{Path: "certmagic"}

	domains := []string{conf.Domain}
	if conf.Domain == "" {
		log.Println("No domain specified, defaulting to localhost")
		domains = []string{"localhost"}
	}

	if err := cfg.ManageSync(ctx, domains); err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:      ":" + conf.Port,
		Handler:   r,
		TLSConfig: cfg.TLSConfig(),
	}, nil
}

func initializeTracing(ctx context.Context, cfg *config.Configuration) (func(context.Context) error, error) {
	if !cfg.EnableTelemetry {
		return func(context.Context) error { return nil }, nil
	}
	shutdown, err := trace.SetupOTelSDK(ctx, cfg.ProjectName)
	if err != nil {
		return nil, fmt.Errorf("error setting up OTel SDK: %v", err)
	}
	return shutdown, nil
}

// startServer serves until ctx is cancelled, then drains in-flight requests.
func startServer(ctx context.Context, router *gin.Engine, cfg config.ServerConfig) error {
	var (
		server *http.Server
		err    error
	)
	if cfg.SSL {
		server, err = newTLSServer(ctx, router, cfg)
		if err != nil {
			return err
		}
	} else {
		server = &http.Server{Addr: ":" + cfg.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.SSL {
			log.Printf("Starting HTTPS server on %s", cfg.Port)
			errCh <- server.ListenAndServeTLS("", "")
			return
		}
		log.Printf("Starting server on http://localhost:%s", cfg.Port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	logrus.Info("shutting down server")
	return server.Shutdown(shutdownCtx)
}

// serverCommands returns the start command: it applies pending migrations,
// then serves the API.
func serverCommands(app *storefrontInstance) *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "start the storefront API server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := app.cnf
			defer func() {
				if err := app.storefront.Close(); err != nil {
					logrus.WithError(err).Warn("error closing storefront")
				}
			}()

			if !skipMigrations {
				n, err := runMigrations(cfg, migrateUp)
				if err != nil {
					log.Fatalf("Error migrating up: %v", err)
				}
				logrus.WithField("applied", n).Info("database schema up to date")
			}

			shutdown, err := initializeTracing(ctx, cfg)
			if err != nil {
				log.Fatal(err)
			}
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.Printf("Error during shutdown: %v", err)
				}
			}()

			router := api.NewAPI(app.storefront).Router()
			if err := startServer(ctx, router, cfg.Server); err != nil {
				log.Fatal(err)
			}
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on start")

	return cmd
}
