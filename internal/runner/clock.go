package runner

import (
	"context"
	"time"
)

// Clock — источник времени цикла. В тестах подменяется.
type Clock interface {
	Now() time.Time
	// Wait блокирует на d или до отмены ctx (тогда ctx.Err()).
	Wait(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
