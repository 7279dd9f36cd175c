package main

import (
	"context"
	"log"

	"signal_bot/internal/exchange"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/health"
	"signal_bot/internal/modules/postgres"
	"signal_bot/internal/modules/strategy"
	"signal_bot/internal/notify"
	"signal_bot/internal/runner"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

func main() {
	// конфиг читаем до fx: от него зависит набор модулей
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal(err)
	}

	if err := logger.Init(cfg.Service.LogLevel, cfg.Service.Development); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	logger.SetServiceName(cfg.Service.Name)
	tracing.SetServiceName(cfg.Service.Name)

	logger.Info("effective config:\n%s", cfg.Dump())

	_, closeTracer, err := tracing.InitTracer(tracing.Config{
		Enabled: cfg.Tracing.Enabled,
		Host:    cfg.Tracing.Host,
		Port:    cfg.Tracing.Port,
	})
	if err != nil {
		logger.Fatal("init tracer: %v", err)
	}
	defer closeTracer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	modules := []fx.Option{
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.InfoLogger}
		}),
		fx.Provide(
			func() context.Context {
				return ctx
			},
		),
		fx.Invoke(func(lc fx.Lifecycle) {
			// хуки OnStop идут в обратном порядке: корневой ctx гасится последним
			lc.Append(fx.Hook{OnStop: func(context.Context) error {
				cancel()
				return nil
			}})
		}),
		config.Module(cfg),
		strategy.Module(),
		exchange.Module(cfg),
		health.Module(),
		notify.Module(),
		runner.Module(),
	}
	if cfg.DataSource.Provider == config.ProviderPostgres {
		modules = append(modules, postgres.Module())
	}

	fx.New(modules...).Run()
}
