package strategy

import (
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/strategy/service"
	"signal_bot/pkg/logger"

	"go.uber.org/fx"
)

func newParams(cfg *config.Config) service.Params {
	p := cfg.StrategyParams()
	logger.Info("[STRAT] ema %d/%d macd %d/%d/%d rsi %d (%.0f/%.0f) bb %d/%.1f, warmup %d candles",
		p.EMAShort, p.EMALong, p.MACDFast, p.MACDSlow, p.MACDSignal,
		p.RSIPeriod, p.RSIOversold, p.RSIOverbought, p.BollingerWindow, p.BollingerDev, p.Warmup())
	return p
}

func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(
			newParams,               // service.Params
			service.NewIndicatorSet, // *service.IndicatorSet
			service.NewEngine,       // *service.Engine
		),
	)
}
