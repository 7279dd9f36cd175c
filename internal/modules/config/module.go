package config

import "go.uber.org/fx"

// Module отдаёт уже загруженный конфиг: main читает его до fx.New,
// чтобы выбрать набор модулей.
func Module(cfg *Config) fx.Option {
	return fx.Module("config",
		fx.Supply(cfg),
	)
}
