package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/riskscope/internal/api"
	"github.com/wonny/riskscope/internal/api/handlers"
	"github.com/wonny/riskscope/internal/scheduler"
	"github.com/wonny/riskscope/internal/scheduler/jobs"
	"github.com/wonny/riskscope/pkg/metrics"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health               - Health check
  POST /risk                 - Portfolio tail risk and analytics
  POST /run-scenario         - Stress scenario simulation
  POST /run-scenario/chart   - Scenario projection as PNG
  GET  /api/scenarios        - Scenario catalog
  GET  /api/assets           - Asset universe with factor betas
  POST /api/positions        - Share counts from capital
  GET  /metrics              - Prometheus metrics (METRICS_ENABLED)

Example:
  go run ./cmd/riskctl api
  go run ./cmd/riskctl api --port 8080 --warmup`,
	RunE: runAPIServer,
}

var (
	apiPort   string
	apiWarmup bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
	apiCmd.Flags().BoolVar(&apiWarmup, "warmup", false, "run the price cache warm-up job in-process")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(out, "=== riskscope API Server ===")

	ctx := context.Background()

	// 1. Dependencies
	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer d.close()

	if apiPort != "" {
		d.cfg.Port = apiPort
	}
	log := d.log

	// 2. Services
	aggregator, err := d.aggregator()
	if err != nil {
		return err
	}

	if d.cfg.MetricsEnabled {
		metrics.Init()
	}

	// 3. Router and server
	router := api.NewRouter(
		handlers.NewRiskHandler(aggregator, log),
		handlers.NewScenarioHandler(d.runner(), log),
		handlers.NewReferenceHandler(d.model),
		api.RouterConfig{
			CORSOrigins:    d.cfg.CORSOrigins,
			MetricsEnabled: d.cfg.MetricsEnabled,
		},
		log,
	)
	server := api.New(d.cfg, log, router)

	// 4. Optional in-process warm-up
	var sched *scheduler.Scheduler
	if apiWarmup {
		sched = scheduler.New(log)
		if err := sched.AddJob(jobs.NewWarmCacheJob(d.source, nil, d.cfg.WarmupSchedule, log)); err != nil {
			return fmt.Errorf("schedule warm-up: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// 5. Start server with graceful shutdown
	if err := server.Listen(); err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	PrintSuccess(fmt.Sprintf("Server listening on %s", server.Addr()))
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
