package exchange

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

type StreamConfig struct {
	URL        string // wss://stream.binance.com:9443/ws
	Interval   string
	Lookback   int
	StaleAfter time.Duration
}

// Seeder — разовая загрузка истории перед подпиской.
type Seeder interface {
	GetPrices(ctx context.Context, symbol, interval string, lookback int) ([]models.PriceSample, error)
}

// KlineStream держит кольцевой буфер закрытых свечей на символ
// из <symbol>@kline_<interval> и отдаёт их как источник данных.
type KlineStream struct {
	cfg    StreamConfig
	seed   Seeder
	dialer *websocket.Dialer
	now    func() time.Time

	mu      sync.RWMutex
	buffers map[string][]models.PriceSample
	lastMsg map[string]time.Time
}

func NewKlineStream(cfg StreamConfig, seed Seeder) *KlineStream {
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 3 * time.Minute
	}
	return &KlineStream{
		cfg:     cfg,
		seed:    seed,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		now:     time.Now,
		buffers: make(map[string][]models.PriceSample),
		lastMsg: make(map[string]time.Time),
	}
}

// Start засевает буферы через REST и поднимает по соединению на символ.
// Ошибка засева не фатальна: буфер наполнится из потока.
func (s *KlineStream) Start(ctx context.Context, symbols []string) {
	for _, sym := range symbols {
		if s.seed != nil {
			samples, err := s.seed.GetPrices(ctx, sym, s.cfg.Interval, s.cfg.Lookback)
			if err != nil {
				logger.Warn("[WS] %s seed failed: %v", sym, err)
			} else {
				for _, smp := range samples {
					s.push(sym, smp)
				}
			}
		}
		go s.watch(ctx, sym)
	}
}

// GetPrices — последние lookback свечей из буфера.
func (s *KlineStream) GetPrices(_ context.Context, symbol, _ string, lookback int) ([]models.PriceSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buf := s.buffers[symbol]
	if len(buf) == 0 {
		return nil, errors.Wrap(ErrStreamEmpty, symbol)
	}
	if age := s.now().Sub(s.lastMsg[symbol]); age > s.cfg.StaleAfter {
		return nil, errors.Wrapf(ErrStreamStale, "%s: no messages for %s", symbol, age.Truncate(time.Second))
	}
	if lookback > 0 && len(buf) > lookback {
		buf = buf[len(buf)-lookback:]
	}
	out := make([]models.PriceSample, len(buf))
	copy(out, buf)
	return out, nil
}

func (s *KlineStream) watch(ctx context.Context, symbol string) {
	url := strings.TrimRight(s.cfg.URL, "/") + "/" + strings.ToLower(symbol) + "@kline_" + s.cfg.Interval
	var backoff time.Duration

	for {
		healthy, err := s.session(ctx, url, symbol)
		if ctx.Err() != nil {
			return
		}
		backoff = retryDelay(backoff, healthy)
		logger.Warn("[WS] %s disconnected: %v, retry in %s", symbol, err, backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// retryDelay — пауза перед переподключением. После сессии, получившей данные, отсчёт с начала.
func retryDelay(prev time.Duration, healthy bool) time.Duration {
	if healthy || prev <= 0 {
		return minBackoff
	}
	if next := prev * 2; next < maxBackoff {
		return next
	}
	return maxBackoff
}

// session — одно соединение до первой ошибки чтения.
// healthy: соединение успело получить хотя бы одно сообщение.
func (s *KlineStream) session(ctx context.Context, url, symbol string) (healthy bool, err error) {
	conn, _, err := s.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return false, errors.Wrap(err, "dial")
	}
	defer conn.Close()

	// закрываем соединение при отмене, чтобы разбудить ReadMessage
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	logger.Info("[WS] %s connected", symbol)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.StaleAfter))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return healthy, errors.Wrap(err, "read")
		}
		healthy = true
		s.onMessage(symbol, msg)
	}
}

type klineEvent struct {
	Event  string `json:"e"`
	Symbol string `json:"s"`
	K      struct {
		OpenTime int64  `json:"t"`
		Close    string `json:"c"`
		Closed   bool   `json:"x"`
	} `json:"k"`
}

func (s *KlineStream) onMessage(symbol string, msg []byte) {
	var ev klineEvent
	if err := sonic.Unmarshal(msg, &ev); err != nil || ev.Event != "kline" {
		return
	}

	s.mu.Lock()
	s.lastMsg[symbol] = s.now()
	s.mu.Unlock()

	if !ev.K.Closed {
		return
	}
	px, err := strconv.ParseFloat(ev.K.Close, 64)
	if err != nil || px <= 0 {
		return
	}
	s.push(symbol, models.PriceSample{Time: time.UnixMilli(ev.K.OpenTime).UTC(), Close: px})
}

// push добавляет свечу; свеча с тем же временем заменяет последнюю, более старая игнорируется.
func (s *KlineStream) push(symbol string, smp models.PriceSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := s.buffers[symbol]
	if n := len(buf); n > 0 {
		last := buf[n-1].Time
		switch {
		case smp.Time.Equal(last):
			buf[n-1] = smp
			return
		case smp.Time.Before(last):
			return
		}
	}
	buf = append(buf, smp)
	if limit := s.cfg.Lookback; limit > 0 && len(buf) > limit {
		buf = append(buf[:0:0], buf[len(buf)-limit:]...)
	}
	s.buffers[symbol] = buf
	s.lastMsg[symbol] = s.now()
}
