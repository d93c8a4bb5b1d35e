package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/shopbot/api/command"
	"github.com/fastygo/shopbot/api/flow"
	apiHandler "github.com/fastygo/shopbot/api/handler"
	"github.com/fastygo/shopbot/internal/config"
	"github.com/fastygo/shopbot/internal/infrastructure/buffer"
	"github.com/fastygo/shopbot/internal/infrastructure/discord"
	"github.com/fastygo/shopbot/internal/infrastructure/monitor"
	"github.com/fastygo/shopbot/internal/middleware"
	"github.com/fastygo/shopbot/internal/router"
	"github.com/fastygo/shopbot/internal/services"
	"github.com/fastygo/shopbot/internal/services/lifecycle"
	"github.com/fastygo/shopbot/internal/ui"
	"github.com/fastygo/shopbot/pkg/httpcontext"
	"github.com/fastygo/shopbot/pkg/logger"
	"github.com/fastygo/shopbot/repository/jsonstore"
	"github.com/fastygo/shopbot/usecase/economy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx := manager.Context(context.Background())
	manager.Listen()

	store, err := jsonstore.Open(cfg.Store.DataDir, zapLogger.Named("store"))
	if err != nil {
		zapLogger.Fatal("failed to open store", zap.String("dir", cfg.Store.DataDir), zap.Error(err))
	}
	manager.Register("store", func(ctx context.Context) error {
		if !store.Flush() {
			return errors.New("some documents could not be written")
		}
		return nil
	})

	bufferStore, err := buffer.Open(cfg.Audit.BufferPath, "audit")
	if err != nil {
		zapLogger.Fatal("failed to open audit buffer", zap.Error(err))
	}
	manager.Register("audit_buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	client, err := discord.New(discord.Config{Token: cfg.Discord.Token, GuildID: cfg.Discord.GuildID}, zapLogger.Named("gateway"))
	if err != nil {
		zapLogger.Fatal("failed to create discord client", zap.Error(err))
	}
	responder := discord.NewResponder(client.Session())
	guild := discord.NewGuild(client.Session(), cfg.Discord.GuildID)

	uiRouter := ui.NewRouter(responder, ui.Config{
		ComponentTimeout: cfg.UI.ComponentTimeout,
		ModalTimeout:     cfg.UI.ModalTimeout,
	}, zapLogger.Named("ui"))

	mon := monitor.New(client, bufferStore, uiRouter, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	processor := services.NewAuditProcessor(bufferStore, mon, guild, zapLogger.Named("audit"), services.ProcessorConfig{
		Interval:   cfg.Audit.SyncInterval,
		BatchSize:  50,
		MaxRetries: cfg.Audit.MaxRetry,
		Retention:  cfg.Audit.Retention,
	})
	processor.Start()
	manager.Register("audit_processor", func(ctx context.Context) error {
		processor.Stop(ctx)
		return nil
	})

	uc := economy.New(economy.Deps{
		Currencies: store.Currencies,
		Shops:      store.Shops,
		Accounts:   store.Accounts,
		Settings:   store.Settings,
		Roles:      guild,
		Audit:      services.NewAuditLog(processor, store.Settings, zapLogger),
	}, zapLogger.Named("economy"))

	backups := services.NewBackups(store, services.BackupConfig{
		Dir:      cfg.Backup.Dir,
		Interval: cfg.Backup.Interval,
		Keep:     cfg.Backup.Keep,
	}, zapLogger.Named("backup"))
	backups.Start()
	manager.Register("backups", func(ctx context.Context) error {
		backups.Stop(ctx)
		return nil
	})

	dispatcher := command.NewDispatcher()
	flow.New(flow.Deps{
		Economy:    uc,
		Router:     uiRouter,
		Responder:  responder,
		Appearance: store.Settings,
		PageSize:   cfg.UI.PageSize,
	}, zapLogger).Register(dispatcher)

	interactions := command.NewServer(appCtx, uiRouter, dispatcher, responder, cfg.Context.InteractionTimeout, zapLogger)
	client.OnInteraction(interactions.Serve)

	openCtx, cancelOpen := context.WithTimeout(appCtx, cfg.Discord.ReadyTimeout)
	err = client.Open(openCtx)
	cancelOpen()
	if err != nil {
		zapLogger.Fatal("gateway connection failed", zap.Error(err))
	}
	manager.Register("gateway", client.Close)

	if err := client.RegisterCommands(appCtx, command.Commands(uc.ListSettings())); err != nil {
		zapLogger.Fatal("command registration failed", zap.Error(err))
	}

	if cfg.Health.Enabled {
		ctxAdapter := httpcontext.NewAdapter(appCtx, cfg.Context.RequestTimeout)
		handlers := router.Handlers{
			Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
			Stats:  apiHandler.NewStatsHandler(uc, ctxAdapter, zapLogger),
		}
		server := &fasthttp.Server{
			Handler:      router.New(handlers, middleware.StaticToken(cfg.Health.Token, zapLogger), middleware.AccessLog(zapLogger)),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  time.Minute,
			Name:         cfg.AppName,
		}
		manager.Go("http_server", func() error {
			zapLogger.Info("ops server started", zap.String("address", cfg.HealthAddress()))
			return server.ListenAndServe(cfg.HealthAddress())
		})
		manager.Register("http_server", server.ShutdownWithContext)
	}

	zapLogger.Info("bot started",
		zap.String("environment", cfg.Environment),
		zap.Int("commands", len(dispatcher.Paths())))

	<-appCtx.Done()
	zapLogger.Info("stopping", zap.Error(context.Cause(appCtx)))

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
