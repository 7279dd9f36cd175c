package runner

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"signal_bot/pkg/logger"
)

type running struct {
	loop   *Loop
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager держит по одному циклу на пару.
type Manager struct {
	mu    sync.Mutex
	loops map[string]*running
}

func NewManager() *Manager {
	return &Manager{
		loops: make(map[string]*running),
	}
}

// Start запускает цикл пары в отдельной горутине. Повторный запуск той же пары — ошибка.
func (m *Manager) Start(ctx context.Context, l *Loop) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.loops[l.Symbol()]; ok {
		return fmt.Errorf("loop already running for %s", l.Symbol())
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r := &running{loop: l, cancel: cancel, done: make(chan struct{})}
	m.loops[l.Symbol()] = r

	go func() {
		defer close(r.done)
		if err := l.Run(loopCtx); err != nil && loopCtx.Err() == nil {
			logger.Error("[RUNNER] %s stopped: %v", l.Symbol(), err)
		}

		m.mu.Lock()
		if m.loops[l.Symbol()] == r {
			delete(m.loops, l.Symbol())
		}
		m.mu.Unlock()
	}()

	return nil
}

// Stop гасит цикл пары и ждёт выхода.
func (m *Manager) Stop(ctx context.Context, symbol string) error {
	m.mu.Lock()
	r, ok := m.loops[symbol]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("loop not running for %s", symbol)
	}
	delete(m.loops, symbol)
	m.mu.Unlock()

	r.cancel()
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StopAll гасит все циклы, ждёт их или ctx.
func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	all := make([]*running, 0, len(m.loops))
	for sym, r := range m.loops {
		all = append(all, r)
		delete(m.loops, sym)
	}
	m.mu.Unlock()

	for _, r := range all {
		r.cancel()
	}
	for _, r := range all {
		select {
		case <-r.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// States — текущее состояние каждого цикла, для /status.
func (m *Manager) States() map[string]State {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]State, len(m.loops))
	for sym, r := range m.loops {
		out[sym] = r.loop.State()
	}
	return out
}

func (m *Manager) Symbols() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.loops))
	for sym := range m.loops {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
