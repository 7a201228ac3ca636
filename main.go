// dqsync는 Monte Carlo 데이터 품질 모니터를 메타데이터 카탈로그로 동기화한다.
//
// Usage:
//
//	dqsync sync                 # 한 번 실행 (테이블 인벤토리 실패 시 exit 1)
//	dqsync serve                # API 서버 (+ SYNC_INTERVAL 주기 실행)
//	dqsync token --subject ci   # API Bearer 토큰 발급
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kube-rca/dqsync/internal/config"
	"github.com/kube-rca/dqsync/internal/handler"
	"github.com/kube-rca/dqsync/internal/logger"
	"github.com/kube-rca/dqsync/internal/service"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "dqsync",
		Short: "Sync Monte Carlo data quality monitors into the metadata catalog",
		Long: `dqsync reads the Monte Carlo table inventory and monitor list,
attaches each monitor to the datasets it covers, and upserts the resulting
dataset quality, assertion and incident aspects into the configured sinks.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one sync and exit",
		Long: `Run one sync and exit.

Exits non-zero when the table inventory cannot be fetched. Monitor fetch
failures and per-aspect sink failures are logged and reported in the run
summary but do not fail the command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			run, runErr := a.sync.Run(ctx)
			if run != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(run); err != nil {
					return fmt.Errorf("failed to write run summary: %w", err)
				}
			}
			return runErr
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run periodic syncs",
		Long: `Serve the HTTP API.

When SYNC_INTERVAL is positive a sync also runs once at startup and then on
every tick. POST /api/v1/sync requires a Bearer token issued by "dqsync token".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = ":" + a.cfg.Server.Port
			}

			syncHandler := handler.NewSyncHandler(a.sync, a.sync.History(), a.logger)
			router := handler.NewRouter(syncHandler, a.verifier(), a.cfg.Server.AllowedOrigins, a.logger)
			srv := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			if a.cfg.Sync.Interval > 0 {
				go a.runPeriodically(ctx, a.cfg.Sync.Interval)
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("HTTP server listening", zap.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("failed to serve http: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info("Shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down http server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :$PORT)")
	return cmd
}

func tokenCmd() *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token",
		Long:  "Issue an HS256 bearer token for POST /api/v1/sync signed with JWT_SECRET.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			tokens, err := service.NewTokenService(cfg.Auth)
			if err != nil {
				return err
			}
			tok, err := tokens.IssueToken(subject)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(tok)
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Token subject (required)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}
