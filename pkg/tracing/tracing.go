package tracing

import (
	"context"
	"fmt"
	"signal_bot/pkg/logger"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	jCfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"
)

var (
	// лучше инициализировать при инстанцировании через аргументы, но логгер живёт так же.
	serviceName = "default"
)

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

type Config struct {
	Enabled bool
	Host    string
	Port    int
}

// InitTracer ставит глобальный Jaeger-трейсер. При Enabled=false остаётся NoopTracer.
func InitTracer(conf Config) (opentracing.Tracer, func(), error) {
	if !conf.Enabled {
		return opentracing.NoopTracer{}, func() {}, nil
	}

	cfg := &jCfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jCfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
		Reporter: &jCfg.ReporterConfig{
			LogSpans:           true,
			LocalAgentHostPort: fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		},
	}

	jMetricsFactory := metrics.NullFactory
	tracer, closer, err := cfg.NewTracer(
		jCfg.Metrics(jMetricsFactory),
	)
	if err != nil {
		return nil, nil, err
	}

	opentracing.SetGlobalTracer(tracer)
	return tracer, func() {
		if err := closer.Close(); err != nil {
			logger.Error("Error closing Jaeger tracer: %v", err)
		}
	}, nil
}

// StartSpan открывает дочерний спан от того, что лежит в ctx.
func StartSpan(ctx context.Context, name string, tags opentracing.Tags) (opentracing.Span, context.Context) {
	opts := make([]opentracing.StartSpanOption, 0, 1)
	if len(tags) > 0 {
		opts = append(opts, tags)
	}
	return opentracing.StartSpanFromContext(ctx, name, opts...)
}

// Fail помечает спан ошибкой.
func Fail(span opentracing.Span, err error) {
	if span == nil || err == nil {
		return
	}
	ext.Error.Set(span, true)
	span.SetTag("error.message", err.Error())
}
