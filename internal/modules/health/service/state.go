package service

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"signal_bot/internal/models"
)

// PairStatus — последнее, что известно о цикле пары.
type PairStatus struct {
	Symbol              string    `json:"symbol"`
	LastCycle           time.Time `json:"lastCycle"`
	LastOutcome         string    `json:"lastOutcome"`
	LastDecision        string    `json:"lastDecision"`
	LastPrice           float64   `json:"lastPrice"`
	LastError           string    `json:"lastError,omitempty"`
	LastOrder           time.Time `json:"lastOrder,omitempty"`
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	Escalated           bool      `json:"escalated"`

	fetched bool // была хоть одна успешная загрузка
}

type State struct {
	startedAt time.Time
	now       func() time.Time

	mu    sync.RWMutex
	pairs map[string]*PairStatus
}

// NewState ждёт отчётов от всех symbols: пока хоть одна пара не загрузила данные, not ready.
func NewState(symbols []string) *State {
	s := &State{
		startedAt: time.Now(),
		now:       time.Now,
		pairs:     make(map[string]*PairStatus, len(symbols)),
	}
	for _, sym := range symbols {
		s.pairs[sym] = &PairStatus{Symbol: sym}
	}
	return s
}

func (s *State) Observe(rep models.CycleReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pairs[rep.Symbol]
	if !ok {
		p = &PairStatus{Symbol: rep.Symbol}
		s.pairs[rep.Symbol] = p
	}

	p.LastCycle = rep.At
	p.LastOutcome = string(rep.Outcome)
	p.LastDecision = string(rep.Decision)
	p.ConsecutiveFailures = rep.ConsecutiveFailures
	p.Escalated = rep.Escalated
	p.LastError = ""
	if rep.Err != nil {
		p.LastError = rep.Err.Error()
	}
	if rep.Outcome != models.OutcomeFetchFailed {
		p.fetched = true
		p.LastPrice = rep.Price
	}
	if rep.Outcome == models.OutcomeOrder {
		p.LastOrder = rep.At
	}
}

// Ready: каждая пара хоть раз загрузила данные и ни одна не эскалирована.
func (s *State) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.pairs) == 0 {
		return false
	}
	for _, p := range s.pairs {
		if !p.fetched || p.Escalated {
			return false
		}
	}
	return true
}

func (s *State) Uptime() time.Duration { return s.now().Sub(s.startedAt) }

// Pairs — снимок по парам, отсортированный по символу.
func (s *State) Pairs() []PairStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PairStatus, 0, len(s.pairs))
	for _, p := range s.pairs {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Summary — текст для /status.
func (s *State) Summary() string {
	var b strings.Builder
	ready := "ready"
	if !s.Ready() {
		ready = "not ready"
	}
	fmt.Fprintf(&b, "🩺 %s | uptime %s\n", ready, s.Uptime().Truncate(time.Second))

	for _, p := range s.Pairs() {
		if p.LastCycle.IsZero() {
			fmt.Fprintf(&b, "- %s: ещё не было циклов\n", p.Symbol)
			continue
		}
		fmt.Fprintf(&b, "- %s: %s %s @ %.8g (%s)", p.Symbol, p.LastOutcome, p.LastDecision, p.LastPrice,
			p.LastCycle.UTC().Format(time.TimeOnly))
		if p.ConsecutiveFailures > 0 {
			fmt.Fprintf(&b, " | сбоев подряд: %d", p.ConsecutiveFailures)
		}
		if p.LastError != "" {
			fmt.Fprintf(&b, " | %s", p.LastError)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
