package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	strategy "signal_bot/internal/modules/strategy/service"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDirENV      = "CONFIG_DIR"
	envPrefix         = "SIGNAL_BOT"

	binanceKeyENV    = "BINANCE_KEY"
	binanceSecretENV = "BINANCE_SECRET"
	tokenTelegramENV = "TELEGRAM_TOKEN"
	chatTelegramENV  = "TELEGRAM_CHAT_ID"
	databaseDSN      = "DATABASE_DSN"
)

const (
	ProviderREST     = "rest"
	ProviderStream   = "stream"
	ProviderPostgres = "postgres"

	ModeLive  = "live"
	ModePaper = "paper"

	// MaxKlinesPerRequest — предел limit у /api/v3/klines.
	MaxKlinesPerRequest = 1000
)

// Config — всё, что процесс получает на старте. После загрузки не меняется.
type Config struct {
	Service struct {
		Name        string `mapstructure:"name"`
		LogLevel    string `mapstructure:"log_level"`
		Development bool   `mapstructure:"development"`
	} `mapstructure:"service"`

	Pairs    []models.Pair `mapstructure:"pairs"`
	Interval string        `mapstructure:"interval"` // таймфрейм свечей, "1m"
	Lookback int           `mapstructure:"lookback"` // сколько свечей тянуть за цикл

	Strategy struct {
		EMAShort        int     `mapstructure:"ema_short"`
		EMALong         int     `mapstructure:"ema_long"`
		MACDFast        int     `mapstructure:"macd_fast"`
		MACDSlow        int     `mapstructure:"macd_slow"`
		MACDSignal      int     `mapstructure:"macd_signal"`
		RSIPeriod       int     `mapstructure:"rsi_period"`
		RSIOversold     float64 `mapstructure:"rsi_oversold"`
		RSIOverbought   float64 `mapstructure:"rsi_overbought"`
		BollingerWindow int     `mapstructure:"bollinger_window"`
		BollingerDev    float64 `mapstructure:"bollinger_dev"`
	} `mapstructure:"strategy"`

	Loop struct {
		PollInterval           time.Duration `mapstructure:"poll_interval"`
		MaxConsecutiveFailures int           `mapstructure:"max_consecutive_failures"`
	} `mapstructure:"loop"`

	DataSource struct {
		Provider          string        `mapstructure:"provider"` // rest | stream | postgres
		IncludeOpenCandle bool          `mapstructure:"include_open_candle"`
		StreamURL         string        `mapstructure:"stream_url"`
		StaleAfter        time.Duration `mapstructure:"stale_after"`
	} `mapstructure:"data_source"`

	Exchange struct {
		Mode         string        `mapstructure:"mode"` // live | paper
		BaseURL      string        `mapstructure:"base_url"`
		APIKey       string        `mapstructure:"api_key"`
		APISecret    string        `mapstructure:"api_secret"`
		RecvWindow   int64         `mapstructure:"recv_window"`
		Timeout      time.Duration `mapstructure:"timeout"`
		PaperBalance float64       `mapstructure:"paper_balance"` // стартовый quote-баланс paper-режима
	} `mapstructure:"exchange"`

	Telegram struct {
		Token  string `mapstructure:"token"`
		ChatID int64  `mapstructure:"chat_id"`
	} `mapstructure:"telegram"`

	Notify struct {
		ReportHolds bool `mapstructure:"report_holds"`
	} `mapstructure:"notify"`

	Postgres struct {
		DSN      string `mapstructure:"dsn"`
		MaxConns int32  `mapstructure:"max_conns"`
	} `mapstructure:"postgres"`

	Tracing struct {
		Enabled bool   `mapstructure:"enabled"`
		Host    string `mapstructure:"host"`
		Port    int    `mapstructure:"port"`
	} `mapstructure:"tracing"`

	Health struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"health"`

	settings map[string]any
}

// NewConfig — fx-провайдер: configs/$CONFIG_FILE (по умолчанию values_local.yaml).
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	dir := os.Getenv(configDirENV)
	if dir == "" {
		dir = "configs"
	}
	return Load(filepath.Join(dir, configFileName))
}

// Load читает yaml, накладывает env и проверяет результат.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	// секреты из окружения сильнее файла
	if key := os.Getenv(binanceKeyENV); key != "" {
		cfg.Exchange.APIKey = key
	}
	if secret := os.Getenv(binanceSecretENV); secret != "" {
		cfg.Exchange.APISecret = secret
	}
	if token := os.Getenv(tokenTelegramENV); token != "" {
		cfg.Telegram.Token = token
	}
	if v := os.Getenv(chatTelegramENV); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
	if dsn := os.Getenv(databaseDSN); dsn != "" {
		cfg.Postgres.DSN = dsn
	}

	cfg.Interval = helper.NormInterval(cfg.Interval)
	cfg.settings = v.AllSettings()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := strategy.DefaultParams()

	v.SetDefault("service.name", "signal_bot")
	v.SetDefault("service.log_level", "info")

	v.SetDefault("interval", "1m")
	v.SetDefault("lookback", 200)

	v.SetDefault("strategy.ema_short", def.EMAShort)
	v.SetDefault("strategy.ema_long", def.EMALong)
	v.SetDefault("strategy.macd_fast", def.MACDFast)
	v.SetDefault("strategy.macd_slow", def.MACDSlow)
	v.SetDefault("strategy.macd_signal", def.MACDSignal)
	v.SetDefault("strategy.rsi_period", def.RSIPeriod)
	v.SetDefault("strategy.rsi_oversold", def.RSIOversold)
	v.SetDefault("strategy.rsi_overbought", def.RSIOverbought)
	v.SetDefault("strategy.bollinger_window", def.BollingerWindow)
	v.SetDefault("strategy.bollinger_dev", def.BollingerDev)

	v.SetDefault("loop.poll_interval", "60s")
	v.SetDefault("loop.max_consecutive_failures", 5)

	v.SetDefault("data_source.provider", ProviderREST)
	v.SetDefault("data_source.stream_url", "wss://stream.binance.com:9443/ws")
	v.SetDefault("data_source.stale_after", "3m")

	v.SetDefault("exchange.mode", ModePaper)
	v.SetDefault("exchange.base_url", "https://api.binance.com")
	v.SetDefault("exchange.recv_window", 5000)
	v.SetDefault("exchange.timeout", "10s")
	v.SetDefault("exchange.paper_balance", 100.0)

	v.SetDefault("tracing.host", "localhost")
	v.SetDefault("tracing.port", 6831)

	v.SetDefault("health.addr", ":8080")
}

// StrategyParams — параметры сигнального движка.
func (c *Config) StrategyParams() strategy.Params {
	return strategy.Params{
		EMAShort:        c.Strategy.EMAShort,
		EMALong:         c.Strategy.EMALong,
		MACDFast:        c.Strategy.MACDFast,
		MACDSlow:        c.Strategy.MACDSlow,
		MACDSignal:      c.Strategy.MACDSignal,
		RSIPeriod:       c.Strategy.RSIPeriod,
		RSIOversold:     c.Strategy.RSIOversold,
		RSIOverbought:   c.Strategy.RSIOverbought,
		BollingerWindow: c.Strategy.BollingerWindow,
		BollingerDev:    c.Strategy.BollingerDev,
	}
}

func (c *Config) Validate() error {
	if len(c.Pairs) == 0 {
		return errors.New("config: at least one pair is required")
	}
	seen := make(map[string]bool, len(c.Pairs))
	for i, p := range c.Pairs {
		switch {
		case p.Symbol == "" || p.BaseAsset == "" || p.QuoteAsset == "":
			return fmt.Errorf("config: pairs[%d]: symbol, base_asset and quote_asset are required", i)
		case p.RiskBudget <= 0:
			return fmt.Errorf("config: pairs[%d] %s: risk_budget must be > 0", i, p.Symbol)
		case seen[p.Symbol]:
			return fmt.Errorf("config: pairs[%d]: duplicate symbol %s", i, p.Symbol)
		}
		seen[p.Symbol] = true
	}

	if _, err := helper.IntervalDuration(c.Interval); err != nil {
		return errors.Wrap(err, "config: interval")
	}

	params := c.StrategyParams()
	if err := params.Validate(); err != nil {
		return errors.Wrap(err, "config: strategy")
	}
	// две полные строки + возможно отброшенная незакрытая свеча
	if need := params.Warmup() + 2; c.Lookback < need {
		return fmt.Errorf("config: lookback %d is too small, need at least %d candles", c.Lookback, need)
	}
	if c.Loop.PollInterval <= 0 {
		return errors.New("config: loop.poll_interval must be > 0")
	}

	switch c.DataSource.Provider {
	case ProviderREST, ProviderStream:
		// одним запросом, плюс место под незакрытую свечу
		limit := MaxKlinesPerRequest
		if !c.DataSource.IncludeOpenCandle {
			limit--
		}
		if c.Lookback > limit {
			return fmt.Errorf("config: lookback %d exceeds %d candles per klines request", c.Lookback, limit)
		}
	case ProviderPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("config: postgres.dsn is required for postgres data source")
		}
	default:
		return fmt.Errorf("config: unknown data_source.provider %q", c.DataSource.Provider)
	}

	switch c.Exchange.Mode {
	case ModePaper:
	case ModeLive:
		if c.Exchange.APIKey == "" || c.Exchange.APISecret == "" {
			return errors.New("config: live mode needs BINANCE_KEY and BINANCE_SECRET")
		}
	default:
		return fmt.Errorf("config: unknown exchange.mode %q", c.Exchange.Mode)
	}
	return nil
}

// Dump — эффективный конфиг в yaml для стартового лога, секреты замазаны.
func (c *Config) Dump() string {
	settings := make(map[string]any, len(c.settings))
	for k, v := range c.settings {
		settings[k] = v
	}
	mask(settings, "exchange", "api_key", "api_secret")
	mask(settings, "telegram", "token")
	mask(settings, "postgres", "dsn")

	bs, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Sprintf("<dump error: %v>", err)
	}
	return string(bs)
}

func mask(settings map[string]any, section string, keys ...string) {
	src, ok := settings[section].(map[string]any)
	if !ok {
		return
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	for _, k := range keys {
		if s, ok := dst[k].(string); ok && s != "" {
			dst[k] = "***"
		}
	}
	settings[section] = dst
}
