package runner

import (
	"context"
	"strings"

	"signal_bot/internal/modules/config"
	strategy "signal_bot/internal/modules/strategy/service"
	"signal_bot/pkg/logger"

	"go.uber.org/fx"
)

type loopsIn struct {
	fx.In

	Cfg        *config.Config
	Data       MarketDataSource
	Exchange   Exchange
	Notifier   Notifier
	Indicators *strategy.IndicatorSet
	Engine     *strategy.Engine
	Observers  []Observer `group:"observers"`
}

// NewLoops собирает по циклу на каждую пару из конфига.
func NewLoops(in loopsIn) []*Loop {
	rep := NewReporter(in.Notifier, ReporterConfig{
		ReportHolds: in.Cfg.Notify.ReportHolds,
		AlertAfter:  in.Cfg.Loop.MaxConsecutiveFailures,
	}, in.Observers...)

	loops := make([]*Loop, 0, len(in.Cfg.Pairs))
	for _, pair := range in.Cfg.Pairs {
		loops = append(loops, NewLoop(
			LoopConfig{
				Pair:                   pair,
				Interval:               in.Cfg.Interval,
				Lookback:               in.Cfg.Lookback,
				PollInterval:           in.Cfg.Loop.PollInterval,
				MaxConsecutiveFailures: in.Cfg.Loop.MaxConsecutiveFailures,
			},
			LoopDeps{
				Data:       in.Data,
				Indicators: in.Indicators,
				Engine:     in.Engine,
				Executor:   NewExecutor(in.Exchange, pair),
				Reporter:   rep,
				Clock:      RealClock(),
			},
		))
	}
	return loops
}

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			NewManager, // *Manager
			NewLoops,   // []*Loop
		),
		fx.Invoke(func(
			lc fx.Lifecycle,
			ctx context.Context,
			m *Manager,
			loops []*Loop,
			n Notifier,
		) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					// циклы живут на корневом ctx, а не на ctx старта fx
					for _, l := range loops {
						if err := m.Start(ctx, l); err != nil {
							return err
						}
					}
					logger.Info("[RUNNER] started %d loops: %s", len(loops), strings.Join(m.Symbols(), ", "))
					n.Sendf("▶️ signal_bot запущен: %s", strings.Join(m.Symbols(), ", "))
					return nil
				},
				OnStop: func(stopCtx context.Context) error {
					return m.StopAll(stopCtx)
				},
			})
		}),
	)
}
