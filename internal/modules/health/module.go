package health

import (
	"context"
	"net"
	"net/http"
	"time"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/health/service"
	"signal_bot/internal/notify"
	"signal_bot/internal/runner"
	"signal_bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

type Config struct {
	Addr string // например ":8080"
}

func NewConfig(cfg *config.Config) Config {
	return Config{Addr: cfg.Health.Addr}
}

func NewState(cfg *config.Config) *service.State {
	symbols := make([]string, 0, len(cfg.Pairs))
	for _, p := range cfg.Pairs {
		symbols = append(symbols, p.Symbol)
	}
	return service.NewState(symbols)
}

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewMux(state *service.State, reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		// liveness: процесс жив
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		// readiness: все пары загрузили данные, эскалаций нет
		if !state.Ready() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"ready":     state.Ready(),
			"uptimeSec": int64(state.Uptime().Seconds()),
			"pairs":     state.Pairs(),
		}
		data, err := sonic.Marshal(resp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	})

	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return mux
}

func RunHTTP(lc fx.Lifecycle, cfg Config, mux *http.ServeMux) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return err
			}
			logger.Info("[HEALTH] listening on %s", ln.Addr())
			go func() { _ = srv.Serve(ln) }()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			NewState,
			NewConfig,
			NewRegistry,
			NewMux,
			func(reg *prometheus.Registry) (*service.Metrics, error) { return service.NewMetrics(reg) },
			fx.Annotate(
				func(s *service.State) runner.Observer { return s },
				fx.ResultTags(`group:"observers"`),
			),
			fx.Annotate(
				func(m *service.Metrics) runner.Observer { return m },
				fx.ResultTags(`group:"observers"`),
			),
			func(s *service.State) notify.StatusSource { return s },
		),
		fx.Invoke(RunHTTP),
	)
}
