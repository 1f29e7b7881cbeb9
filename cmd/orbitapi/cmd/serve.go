package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/auth"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/db/bunx"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/repository"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/server"
	"github.com/ramdasbb/villageorbit/cmd/orbitapi/internal/services/iam"
	"github.com/spf13/cobra"
)

// Interval between sweeps of expired refresh token rows.
const tokenSweepInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Village Orbit API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bunx.NewDB(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		log.Printf("Connected to database")

		userRepo := repository.NewBunUserRepository(db)
		roleRepo := repository.NewBunRoleRepository(db)
		tokenRepo := repository.NewBunRefreshTokenRepository(db)

		issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
		if err != nil {
			return fmt.Errorf("configure token issuer: %w", err)
		}

		iamService := iam.NewService(iam.Dependencies{
			Users:  userRepo,
			Roles:  roleRepo,
			Tokens: tokenRepo,
			Issuer: issuer,
		}, iam.Config{
			RefreshTTL:   cfg.RefreshTokenTTL,
			RotateWindow: cfg.RefreshRotateWindow,
		})

		// Sweep expired refresh tokens in the background
		sweepCtx, cancelSweep := context.WithCancel(cmd.Context())
		defer cancelSweep()
		go func() {
			ticker := time.NewTicker(tokenSweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					n, err := tokenRepo.DeleteExpired(sweepCtx)
					if err != nil {
						log.Printf("ERROR: refresh token sweep failed: %v", err)
					} else if n > 0 {
						log.Printf("Removed %d expired refresh tokens", n)
					}
				case <-sweepCtx.Done():
					return
				}
			}
		}()

		r := server.NewRouter(server.RouterOptions{
			IAMService:  iamService,
			Issuer:      issuer,
			CORSOrigins: cfg.CORSOrigins,
		})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			log.Printf("Starting server on %s", cfg.ServerAddr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			log.Printf("Received signal %v, shutting down gracefully", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			log.Printf("Server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
