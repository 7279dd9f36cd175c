// configcheck загружает конфиг так же, как бот, и печатает эффективные значения.
// Код выхода 1 — конфиг не проходит проверку.
package main

import (
	"flag"
	"fmt"
	"os"

	"signal_bot/internal/modules/config"

	"github.com/pkg/errors"
)

func main() {
	file := flag.String("file", "", "path to config file (default: configs/$CONFIG_FILE)")
	flag.Parse()

	if err := run(*file); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(file string) error {
	var (
		cfg *config.Config
		err error
	)
	if file == "" {
		cfg, err = config.NewConfig()
	} else {
		cfg, err = config.Load(file)
	}
	if err != nil {
		return errors.Wrap(err, "invalid config")
	}

	fmt.Print(cfg.Dump())
	fmt.Printf("# pairs: %d, warmup: %d candles, lookback: %d\n",
		len(cfg.Pairs), cfg.StrategyParams().Warmup(), cfg.Lookback)
	return nil
}
