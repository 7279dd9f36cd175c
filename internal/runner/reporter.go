package runner

import (
	"context"
	"fmt"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"

	"go.uber.org/zap"
)

// Notifier — канал оператора (Telegram или stdout).
type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// Observer — пассивный потребитель отчётов (health, метрики).
type Observer interface {
	Observe(rep models.CycleReport)
}

type ReporterConfig struct {
	ReportHolds bool // слать HOLD оператору
	AlertAfter  int  // loop.max_consecutive_failures
}

// Reporter раздаёт отчёт цикла: лог, наблюдатели, оператор.
type Reporter struct {
	n         Notifier
	cfg       ReporterConfig
	observers []Observer
}

func NewReporter(n Notifier, cfg ReporterConfig, observers ...Observer) *Reporter {
	return &Reporter{n: n, cfg: cfg, observers: observers}
}

func (r *Reporter) Report(_ context.Context, rep models.CycleReport) {
	r.log(rep)

	for _, o := range r.observers {
		o.Observe(rep)
	}

	if r.n == nil {
		return
	}
	// эскалация — одно сообщение на серию неудач
	if rep.Escalated && rep.ConsecutiveFailures == r.cfg.AlertAfter {
		r.n.Sendf("🚨 [%s] %d загрузок данных подряд неудачны, пара помечена not ready: %v",
			rep.Symbol, rep.ConsecutiveFailures, rep.Err)
	}
	if msg, ok := r.message(rep); ok {
		r.n.Send(msg)
	}
}

func (r *Reporter) log(rep models.CycleReport) {
	fields := []zap.Field{
		zap.String("symbol", rep.Symbol),
		zap.String("outcome", string(rep.Outcome)),
		zap.String("decision", string(rep.Decision)),
		zap.String("reason", rep.Reason),
		zap.Float64("price", rep.Price),
	}
	if rep.Quantity > 0 {
		fields = append(fields, zap.Float64("quantity", rep.Quantity))
	}
	if o := rep.Order; o != nil {
		fields = append(fields, zap.String("order_status", string(o.Status)), zap.Float64("requested", o.RequestedAmount))
		if o.Fill != nil {
			fields = append(fields, zap.String("order_id", o.Fill.OrderID), zap.Float64("executed_qty", o.Fill.ExecutedQty))
		}
	}
	if rep.ConsecutiveFailures > 0 {
		fields = append(fields, zap.Int("consecutive_failures", rep.ConsecutiveFailures))
	}

	l := logger.With()
	switch {
	case rep.Failed():
		l.Error("cycle failed", append(fields, zap.Error(rep.Err))...)
	case rep.Outcome == models.OutcomeInsufficientHistory:
		l.Warn("cycle skipped", append(fields, zap.Error(rep.Err))...)
	default:
		l.Info("cycle done", fields...)
	}
}

func (r *Reporter) message(rep models.CycleReport) (string, bool) {
	switch rep.Outcome {
	case models.OutcomeOrder:
		f := rep.Order.Fill
		return fmt.Sprintf("✅ [%s] %s исполнен @ %.8g | qty=%.8g quote=%.8g | %s (orderId=%s)",
			rep.Symbol, rep.Decision, rep.Price, f.ExecutedQty, f.QuoteQty, rep.Reason, f.OrderID), true
	case models.OutcomeOrderFailed:
		return fmt.Sprintf("❗️ [%s] Ошибка заявки %s: %v", rep.Symbol, rep.Decision, rep.Err), true
	case models.OutcomeNoInventory:
		return fmt.Sprintf("⚠️ [%s] SELL @ %.8g пропущен: нет свободного остатка", rep.Symbol, rep.Price), true
	case models.OutcomeInvalidPrice:
		return fmt.Sprintf("❗️ [%s] Некорректная цена: %v", rep.Symbol, rep.Err), true
	case models.OutcomeDecision:
		if r.cfg.ReportHolds {
			return fmt.Sprintf("⏸ [%s] %s @ %.8g | %s", rep.Symbol, rep.Decision, rep.Price, rep.Reason), true
		}
	}
	return "", false
}
