package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/student-assessment/internal/db"
	"github.com/jonathan/student-assessment/internal/server"
	"github.com/jonathan/student-assessment/internal/server/ratelimit"
)

var serveFlags sharedFlags

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that runs perturbation batches on request, streams their
progress over SSE and, when a database is configured, archives every report.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().StringVar(&serveFlags.cfg.Addr, "addr", "", "Address to listen on (default \":8080\")")
	serveCmd.Flags().StringVar(&serveFlags.cfg.Rules, "rules", "", "Path to a YAML rule set replacing the built-in one")
	serveCmd.Flags().Uint64Var(&serveFlags.cfg.Seed, "seed", 0, "Seed for variant generation (0 picks a random seed)")
	bindPipelineFlags(serveCmd, &serveFlags)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := serveFlags.resolve(cmd)
	if err != nil {
		return err
	}
	rs, err := loadRuleSet(cfg)
	if err != nil {
		return err
	}
	generator, _ := newGenerator(rs, cfg.Seed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Requests are independent batches; results are not shared between them.
	invoker, cleanup, err := buildInvoker(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	srvCfg := server.Config{
		Addr:        cfg.Addr,
		Invoker:     invoker,
		Generator:   generator,
		Comparator:  newComparator(rs),
		Concurrency: cfg.Concurrency,
		Logger:      logger,
		RateLimit:   ratelimit.LoadConfig(),
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		srvCfg.Archive = database
	} else {
		logger.Warn("DATABASE_URL not set; reports will not be archived")
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	logger.Info("serving perturbation API", zap.String("addr", cfg.Addr))
	return srv.Start(ctx)
}
