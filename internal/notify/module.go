package notify

import (
	"context"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/runner"
	"signal_bot/pkg/logger"

	"go.uber.org/fx"
)

// newNotifier: Telegram при наличии токена и чата, иначе stdout.
func newNotifier(lc fx.Lifecycle, ctx context.Context, cfg *config.Config, status StatusSource) (runner.Notifier, error) {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		logger.Info("[NOTIFY] telegram not configured, using stdout")
		return NewStdout(), nil
	}

	tg, err := NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, status)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return tg.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			tg.Stop()
			return nil
		},
	})
	return tg, nil
}

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(newNotifier),
	)
}
