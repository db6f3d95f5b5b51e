package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sandevgo/wishbot/internal/config"
	"github.com/sandevgo/wishbot/internal/core"
	"github.com/sandevgo/wishbot/internal/providers/llm"
	"github.com/sandevgo/wishbot/internal/service/admin"
	"github.com/sandevgo/wishbot/internal/service/chat"
	"github.com/sandevgo/wishbot/internal/service/command"
	"github.com/sandevgo/wishbot/internal/service/session"
	"github.com/sandevgo/wishbot/internal/service/throttle"
	badgerstore "github.com/sandevgo/wishbot/internal/storage/badger"
	"github.com/sandevgo/wishbot/internal/storage/file"
	"github.com/sandevgo/wishbot/internal/storage/sqlite"
	"github.com/sandevgo/wishbot/internal/transport/cli"
	"github.com/sandevgo/wishbot/internal/transport/telegram"
	"github.com/sandevgo/wishbot/pkg/log"
	"github.com/sandevgo/wishbot/pkg/retry"
	"github.com/sandevgo/wishbot/pkg/srv"
)

const sweepInterval = time.Minute

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	providerCfg := config.NewProviderConfig(ctx)
	tgCfg := config.NewTelegramConfig(ctx)

	// 2. Storage
	repo, audit, closeStorage, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(closeStorage))

	// 3. Encryption key, fresh on every start
	cipher, err := session.NewCipher()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to generate encryption key")
	}

	// 4. Telegram connection
	tb, err := telegram.NewTeleBot(ctx, tgCfg, retry.NewDefaultRetrier())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to telegram")
	}
	sender := telegram.NewSender(tb)

	store := session.NewStore(repo, cipher, sender, appCfg.HistoryLimit)

	// 5. AI Provider
	aiProvider, err := llm.NewProvider(ctx, providerCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	// 6. Conversation and operator relay
	orchestrator := newOrchestrator(appCfg, store, aiProvider, sender, audit)
	relay := admin.NewRelay(admin.NewStaticRegistry(tgCfg.GetAdminID()), sender)
	router := command.New(command.NewCommands(store, relay, command.NewSelfStats()))

	// 7. Throttling
	limiter := throttle.NewLimiter(throttle.Config{
		Window: appCfg.RateLimitWindow,
		Limit:  appCfg.RateLimitRequests,
	})
	services = append(services, srv.NewPeriodic(sweepInterval, func(ctx context.Context) {
		if n := limiter.Sweep(time.Now(), appCfg.ThrottleIdleTTL); n > 0 {
			log.FromCtx(ctx).Debug().Int("evicted", n).Msg("throttle records swept")
		}
	}))

	if appCfg.NotifyOnReboot {
		services = append(services, session.NewRebootNotifier(store, sender))
	}

	// 8. Transport
	bot := telegram.NewBot(ctx, tb, sender, router, orchestrator, limiter, tgCfg.GetAdminID())
	services = append(services, bot)

	return services
}

// NewConsoleSession wires a terminal conversation. It needs no Telegram token
// and keeps its own history directory.
func NewConsoleSession(ctx context.Context, console *cli.Console) (*cli.ReadLine, func() error) {
	logger := log.FromCtx(ctx)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	appCfg := config.NewAppConfig(ctx)
	providerCfg := config.NewProviderConfig(ctx)

	repo, err := file.NewBlobRepo(ctx, appCfg.GetConsoleHistoryPath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	cipher, err := session.NewCipher()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to generate encryption key")
	}
	store := session.NewStore(repo, cipher, console, appCfg.HistoryLimit)

	aiProvider, err := llm.NewProvider(ctx, providerCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	orchestrator := newOrchestrator(appCfg, store, aiProvider, console, nil)
	relay := admin.NewRelay(admin.NewStaticRegistry(cli.LocalIdentity), console)
	router := command.New(command.NewCommands(store, relay, command.NewSelfStats()))

	repl, err := cli.NewReadLine(appCfg, console, router, orchestrator)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start console")
	}

	// Console history is unreadable after exit anyway
	cleanup := func() error {
		if err := repl.Shutdown(ctx); err != nil {
			return err
		}
		return os.RemoveAll(appCfg.GetConsoleHistoryPath())
	}
	return repl, cleanup
}

func newOrchestrator(
	cfg *config.AppConfig,
	store chat.HistoryStore,
	ai core.AIProvider,
	transport core.Transport,
	audit core.AuditRepository,
) *chat.Orchestrator {
	return chat.NewOrchestrator(chat.Config{
		Superwish:  cfg.Superwish,
		InviteLink: cfg.PrivateChannelLink,
		Timeout:    cfg.LLMTimeout,
	}, store, ai, transport, audit)
}

// initStorage opens the configured history backend. SQLite keeps the message
// log in its own table; the other backends append to a text file.
func initStorage(ctx context.Context, cfg *config.AppConfig) (core.BlobRepository, core.AuditRepository, func() error, error) {
	if cfg.HistoryBackend == config.HistoryBackendSQLite {
		if err := os.MkdirAll(cfg.GetRuntimePath(), 0700); err != nil {
			return nil, nil, nil, err
		}
		db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
		if err != nil {
			return nil, nil, nil, err
		}
		return sqlite.NewBlobRepo(db), sqlite.NewAuditRepo(db), db.Close, nil
	}

	audit, err := file.NewAuditRepo(cfg.GetMessageLogPath())
	if err != nil {
		return nil, nil, nil, err
	}

	if cfg.HistoryBackend == config.HistoryBackendBadger {
		db, err := badgerstore.Open(ctx, cfg.GetBadgerPath())
		if err != nil {
			return nil, nil, nil, err
		}
		return badgerstore.NewBlobRepo(db), audit, db.Close, nil
	}

	repo, err := file.NewBlobRepo(ctx, cfg.GetHistoryPath())
	if err != nil {
		return nil, nil, nil, err
	}
	return repo, audit, func() error { return nil }, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
