package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/user/pane-scraper/internal/adapter/chromedp_browser"
	"github.com/user/pane-scraper/internal/adapter/csvfile"
	"github.com/user/pane-scraper/internal/adapter/filelock"
	"github.com/user/pane-scraper/internal/adapter/gate"
	"github.com/user/pane-scraper/internal/adapter/htmldoc"
	"github.com/user/pane-scraper/internal/adapter/memory"
	"github.com/user/pane-scraper/internal/adapter/postgres"
	redisadapter "github.com/user/pane-scraper/internal/adapter/redis"
	"github.com/user/pane-scraper/internal/adapter/sqlite"
	"github.com/user/pane-scraper/internal/delivery/http/handler"
	"github.com/user/pane-scraper/internal/delivery/http/router"
	"github.com/user/pane-scraper/internal/entity"
	"github.com/user/pane-scraper/internal/profiles"
	"github.com/user/pane-scraper/internal/repository"
	"github.com/user/pane-scraper/internal/usecase"
	"github.com/user/pane-scraper/pkg/config"
	"github.com/user/pane-scraper/pkg/logger"
	"github.com/user/pane-scraper/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var profileFile string

var runCmd = &cobra.Command{
	Use:   "run <profile> [--profile-file <path/to/profile.yaml>]",
	Short: "Runs a built-in profile, or the profile in --profile-file.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		if name == "" && profileFile == "" {
			return fmt.Errorf("a profile name or --profile-file is required (built-in: %v)", profiles.Names())
		}
		return runProfile(cmd.Context(), name, profileFile)
	},
}

var linkedinCmd = &cobra.Command{
	Use:   "linkedin",
	Short: "Scrapes the LinkedIn job search. Waits for you to log in first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProfile(cmd.Context(), profiles.LinkedInJobs().Name, "")
	},
}

var ycCmd = &cobra.Command{
	Use:   "yc",
	Short: "Scrapes the Y Combinator AI company directory.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProfile(cmd.Context(), profiles.YCCompanies().Name, "")
	},
}

func init() {
	runCmd.Flags().StringVar(&profileFile, "profile-file", "", "YAML profile to run instead of a built-in one.")
	rootCmd.AddCommand(runCmd, linkedinCmd, ycCmd)
}

func runProfile(ctx context.Context, name, file string) error {
	// --- Configuration ---
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	validation := cfg.Validate()
	if !validation.OK() {
		return validation.Err()
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	for _, w := range validation.Warnings {
		log.Warn("config warning", zap.String("warning", w))
	}

	// --- Metrics ---
	metrics.Init()

	profile, err := profiles.Resolve(name, file)
	if err != nil {
		return err
	}
	output := outputPath(cfg, profile)
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	lock, err := filelock.Acquire(output)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Warn("failed to release run lock", zap.String("path", lock.Path()), zap.Error(err))
		}
	}()

	// --- Redis ---
	var rdb *goredis.Client
	if cfg.Gate == config.GateRedis || cfg.StatusStore == config.StatusRedis {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		log.Info("Redis connection established", zap.String("addr", cfg.RedisAddr))
	}

	// --- Repositories ---
	var statusRepo repository.StatusRepository = memory.NewStatusRepo()
	if cfg.StatusStore == config.StatusRedis {
		statusRepo = redisadapter.NewStatusRepo(rdb, cfg.StatusTTL())
	}

	sinks, closeSinks, err := buildSinks(ctx, cfg, output, log)
	if err != nil {
		return err
	}
	defer closeSinks()

	operatorGate, resumer := buildGate(cfg, rdb, log)

	// --- Browser ---
	session, err := chromedp_browser.NewSession(ctx, chromedp_browser.Options{
		Headless:    cfg.Headless,
		UserAgent:   cfg.UserAgent,
		ExecPath:    cfg.ChromePath,
		UserDataDir: cfg.UserDataDir,
	}, log)
	if err != nil {
		return err
	}
	defer session.Close()

	// --- Use Cases ---
	scraper := usecase.NewScraperUseCase(
		session.Page(),
		htmldoc.Parser{},
		operatorGate,
		usecase.NewExporter(sinks, log),
		statusRepo,
		usecase.Options{
			NavTimeout:   cfg.NavTimeout(),
			WaitTimeout:  cfg.WaitTimeout(),
			ClickSettle:  cfg.ClickSettle(),
			ScrollSettle: cfg.ScrollSettle(),
			ScrollBudget: usecase.ScrollBudget{
				MaxIterations: cfg.ScrollMaxIterations,
				MaxDuration:   cfg.ScrollMaxDuration(),
			},
			DetailRate: cfg.DetailRatePerSecond,
		},
		log,
	)

	g, gctx := errgroup.WithContext(ctx)
	serverCtx, stopServer := context.WithCancel(gctx)
	defer stopServer()

	var status *entity.RunStatus
	g.Go(func() error {
		defer stopServer()
		var runErr error
		status, runErr = scraper.Run(gctx, profile)
		return runErr
	})

	// --- HTTP Server ---
	if cfg.ControlAddr != "" {
		server := &http.Server{
			Addr:         cfg.ControlAddr,
			Handler:      router.New(handler.NewHandler(statusRepo, resumer, log), log),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		}
		g.Go(func() error {
			return serveControl(serverCtx, server, log)
		})
	}

	err = g.Wait()
	if status != nil {
		log.Info("run finished",
			zap.String("run_id", status.RunID),
			zap.String("state", string(status.State)),
			zap.Int("items_found", status.ItemsFound),
			zap.Int("extracted", status.Extracted),
			zap.Int("failed", status.Failed),
			zap.Int("skipped", status.Skipped),
			zap.Bool("load_complete", status.LoadComplete),
			zap.Strings("outputs", status.Outputs),
		)
	}
	return err
}

func outputPath(cfg *config.Config, profile entity.Profile) string {
	if cfg.Output != "" {
		return cfg.Output
	}
	return filepath.Join(cfg.OutputDir, profile.Output)
}

// buildSinks opens every configured sink. The returned func closes whatever
// was opened and is safe to call after an error.
func buildSinks(ctx context.Context, cfg *config.Config, output string, log *zap.Logger) ([]repository.RecordSink, func(), error) {
	var (
		sinks   []repository.RecordSink
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	for _, name := range cfg.SinkList() {
		switch name {
		case config.SinkCSV:
			sinks = append(sinks, csvfile.NewSink(output))
		case config.SinkPostgres:
			pool, err := postgres.Open(ctx, cfg.PostgresURL)
			if err != nil {
				closeAll()
				return nil, func() {}, err
			}
			closers = append(closers, pool.Close)
			sinks = append(sinks, postgres.NewRecordsRepo(pool))
			log.Info("PostgreSQL connection pool established")
		case config.SinkSQLite:
			repo, err := sqlite.Open(cfg.SQLitePath)
			if err != nil {
				closeAll()
				return nil, func() {}, err
			}
			closers = append(closers, func() {
				if err := repo.Close(); err != nil {
					log.Warn("failed to close sqlite sink", zap.Error(err))
				}
			})
			sinks = append(sinks, repo)
		default:
			closeAll()
			return nil, func() {}, fmt.Errorf("unknown sink %q", name)
		}
	}
	return sinks, closeAll, nil
}

// buildGate returns the configured operator gate. resumer is non-nil only for
// the webhook gate.
func buildGate(cfg *config.Config, rdb *goredis.Client, log *zap.Logger) (repository.OperatorGate, handler.Resumer) {
	switch cfg.Gate {
	case config.GateFile:
		return gate.NewFileFlag(cfg.GateFile, log), nil
	case config.GateWebhook:
		sig := gate.NewSignal()
		return sig, sig
	case config.GateRedis:
		return redisadapter.NewGate(rdb, cfg.RedisGateKey, log), nil
	default:
		return gate.NewTerminal(os.Stdin, os.Stderr), nil
	}
}

func serveControl(ctx context.Context, server *http.Server, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting control server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("control server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
