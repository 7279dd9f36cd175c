package exchange

import (
	"context"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/runner"
	"signal_bot/pkg/logger"

	"go.uber.org/fx"
)

func newClient(cfg *config.Config) *Client {
	return NewClient(Config{
		BaseURL:           cfg.Exchange.BaseURL,
		APIKey:            cfg.Exchange.APIKey,
		APISecret:         cfg.Exchange.APISecret,
		RecvWindow:        cfg.Exchange.RecvWindow,
		Timeout:           cfg.Exchange.Timeout,
		IncludeOpenCandle: cfg.DataSource.IncludeOpenCandle,
	})
}

func symbols(cfg *config.Config) []string {
	out := make([]string, 0, len(cfg.Pairs))
	for _, p := range cfg.Pairs {
		out = append(out, p.Symbol)
	}
	return out
}

// Module собирает биржу и источник свечей под режим из конфига.
// Источник postgres отдаёт модуль postgres.
func Module(cfg *config.Config) fx.Option {
	opts := []fx.Option{
		fx.Provide(newClient), // *Client
	}

	switch cfg.Exchange.Mode {
	case config.ModeLive:
		opts = append(opts, fx.Provide(func(c *Client) runner.Exchange { return c }))
	default:
		opts = append(opts, fx.Provide(func(c *Client, cfg *config.Config) runner.Exchange {
			logger.Info("[EXCHANGE] paper mode, start balance %.2f per quote asset", cfg.Exchange.PaperBalance)
			return NewPaperExchange(c, cfg.Pairs, cfg.Exchange.PaperBalance)
		}))
	}

	switch cfg.DataSource.Provider {
	case config.ProviderREST:
		opts = append(opts, fx.Provide(func(c *Client) runner.MarketDataSource { return c }))
	case config.ProviderStream:
		opts = append(opts,
			fx.Provide(
				func(c *Client, cfg *config.Config) *KlineStream {
					return NewKlineStream(StreamConfig{
						URL:        cfg.DataSource.StreamURL,
						Interval:   cfg.Interval,
						Lookback:   cfg.Lookback,
						StaleAfter: cfg.DataSource.StaleAfter,
					}, c)
				},
				func(s *KlineStream) runner.MarketDataSource { return s },
			),
			fx.Invoke(func(lc fx.Lifecycle, ctx context.Context, s *KlineStream, cfg *config.Config) {
				lc.Append(fx.Hook{
					OnStart: func(_ context.Context) error {
						s.Start(ctx, symbols(cfg))
						return nil
					},
				})
			}),
		)
	}

	return fx.Module("exchange", opts...)
}
