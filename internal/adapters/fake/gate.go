package fake

import (
	"context"
	"sync"
)

// gate blocks callers until released. A zero gate is open.
type gate struct {
	mu sync.Mutex
	ch chan struct{}
}

// hold closes the gate and returns the func that reopens it.
func (g *gate) hold() func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.ch = ch
	var once sync.Once
	return func() {
		once.Do(func() { close(ch) })
	}
}

func (g *gate) wait(ctx context.Context) error {
	g.mu.Lock()
	ch := g.ch
	g.mu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
