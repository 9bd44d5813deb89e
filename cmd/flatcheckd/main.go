// Package main provides the flat check daemon: it evaluates chat roll events
// sent over gRPC, rolls any required flat check and stores the chat card.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/cory-johannsen/pf2-flat-check/internal/config"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/condition"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/dice"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/flatcheck"
	"github.com/cory-johannsen/pf2-flat-check/internal/game/grid"
	"github.com/cory-johannsen/pf2-flat-check/internal/gameserver"
	"github.com/cory-johannsen/pf2-flat-check/internal/i18n"
	"github.com/cory-johannsen/pf2-flat-check/internal/observability"
	"github.com/cory-johannsen/pf2-flat-check/internal/scripting"
	"github.com/cory-johannsen/pf2-flat-check/internal/server"
	"github.com/cory-johannsen/pf2-flat-check/internal/storage/cache"
	"github.com/cory-johannsen/pf2-flat-check/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	envFile := flag.String("env-file", ".env", "optional dotenv file applied before FLATCHECK_ overrides")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading %s: %v", *envFile, err)
	}

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "flatcheckd")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = observability.Sync(logger) }()

	logger.Info("starting flat check server",
		zap.String("grpc_addr", cfg.GRPC.Addr()),
		zap.String("mode", cfg.Server.Mode),
	)

	diceRoller := dice.NewLoggedRoller(dice.NewCryptoSource(), logger)

	condStart := time.Now()
	condRegistry, err := condition.LoadDirectory(cfg.FlatCheck.ConditionsDir)
	if err != nil {
		logger.Fatal("loading condition definitions", zap.Error(err))
	}
	logger.Info("loaded condition definitions",
		zap.Int("count", len(condRegistry.All())),
		zap.Duration("elapsed", time.Since(condStart)),
	)

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		logger.Fatal("loading message catalogs", zap.Error(err))
	}
	renderer, err := gameserver.NewRenderer(bundle, cfg.FlatCheck.Locale)
	if err != nil {
		logger.Fatal("creating card renderer", zap.Error(err))
	}
	logger.Info("card locale selected",
		zap.String("requested", cfg.FlatCheck.Locale),
		zap.String("locale", renderer.Locale()),
		zap.Strings("available", bundle.Locales()),
	)

	lifecycle := server.NewLifecycle(logger, server.WithStopTimeout(cfg.Server.ShutdownTimeout))

	var (
		messages gameserver.MessageStore
		settings cache.Backend
	)
	switch cfg.Server.Mode {
	case config.ModePersistent:
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		messages = postgres.NewMessageRepository(pool.DB())
		settings = postgres.NewSettingsRepository(pool.DB(), cfg.FlatCheck.WorldID)

		healthCtx, stopHealth := context.WithCancel(ctx)
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func() error {
				return pool.Watch(healthCtx, cfg.Database.HealthInterval, 5*time.Second, logger)
			},
			StopFn: func() {
				stopHealth()
				pool.Close()
			},
		})
	default:
		logger.Warn("ephemeral mode: chat cards and settings are kept in memory only")
		messages = gameserver.NewMemoryMessages()
		settings = gameserver.NewMemorySettings()
	}

	var settingsStore gameserver.SettingsStore = settings
	if cfg.Redis.Enabled() {
		client, err := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("creating redis client", zap.Error(err))
		}
		cached, err := cache.NewSettings(client, settings, cfg.FlatCheck.WorldID, cfg.Redis.SettingsTTL, logger)
		if err != nil {
			logger.Fatal("creating settings cache", zap.Error(err))
		}
		settingsStore = cached
		lifecycle.Add("redis", &server.FuncService{
			StartFn: func() error {
				if err := client.Ping(ctx).Err(); err != nil {
					logger.Warn("settings cache unreachable, reading through", zap.Error(err))
				}
				return nil
			},
			StopFn:  func() { _ = client.Close() },
		})
		logger.Info("settings cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.SettingsTTL))
	}

	var presenter gameserver.RollPresenter
	if cfg.FlatCheck.ScriptsDir != "" {
		scriptMgr, err := loadAddons(ctx, cfg.FlatCheck, diceRoller, logger)
		if err != nil {
			logger.Fatal("loading add-on scripts", zap.Error(err))
		}
		presenter = scriptMgr
		lifecycle.Add("scripting", &server.FuncService{
			StartFn: func() error { return nil },
			StopFn:  scriptMgr.Close,
		})
	}

	checks := gameserver.NewCheckHandler(
		flatcheck.NewResolver(grid.Grid{Size: cfg.Grid.Size, Distance: cfg.Grid.Distance}),
		condRegistry,
		diceRoller,
		renderer,
		messages,
		settingsStore,
		presenter,
		cfg.FlatCheck.HideRollValue,
		logger,
	)
	svc := gameserver.NewFlatCheckService(checks, logger)

	grpcServer := grpc.NewServer(gameserver.ServerOptions(logger)...)
	health := gameserver.RegisterFlatCheckServer(grpcServer, svc)
	reflection.Register(grpcServer)

	lifecycle.Add("grpc", &server.FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", cfg.GRPC.Addr())
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.GRPC.Addr(), err)
			}
			logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
			return grpcServer.Serve(lis)
		},
		StopFn: func() {
			health.Shutdown()
			grpcServer.GracefulStop()
		},
	})

	logger.Info("flat check server initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// loadAddons loads every sub-directory of cfg.ScriptsDir as a named add-on.
func loadAddons(ctx context.Context, cfg config.FlatCheckConfig, roller *dice.Roller, logger *zap.Logger) (*scripting.Manager, error) {
	limit := cfg.ScriptInstructionLimit
	if limit == 0 {
		limit = scripting.DefaultInstructionLimit
	}
	entries, err := os.ReadDir(cfg.ScriptsDir)
	if err != nil {
		return nil, fmt.Errorf("reading scripts dir %q: %w", cfg.ScriptsDir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	mgr := scripting.NewManager(roller, logger)
	for _, name := range names {
		dir := filepath.Join(cfg.ScriptsDir, name)
		if err := mgr.LoadAddon(ctx, name, dir, limit); err != nil {
			mgr.Close()
			return nil, fmt.Errorf("add-on %s: %w", name, err)
		}
		logger.Info("add-on scripts loaded", zap.String("addon", name), zap.String("dir", dir))
	}
	return mgr, nil
}
