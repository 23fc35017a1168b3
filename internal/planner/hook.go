package planner

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/sirupsen/logrus"
)

// ResetHook resets every registered session. It is the process-wide
// entry point for "clear the map", reachable from OS signals and the API.
type ResetHook struct {
	mu       sync.Mutex
	sessions []*Session
	once     sync.Once
}

func (h *ResetHook) Register(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions = append(h.sessions, s)
}

func (h *ResetHook) Trigger() {
	h.mu.Lock()
	sessions := append([]*Session(nil), h.sessions...)
	h.mu.Unlock()

	for _, s := range sessions {
		s.Reset()
	}
}

// Install starts forwarding sigs to Trigger until ctx is done. Only the
// first call has any effect; it reports whether this call installed the hook.
func (h *ResetHook) Install(ctx context.Context, sigs ...os.Signal) bool {
	installed := false
	h.once.Do(func() {
		installed = true
		if len(sigs) == 0 {
			return
		}

		ch := make(chan os.Signal, 1)
		signal.Notify(ch, sigs...)
		go func() {
			defer signal.Stop(ch)
			for {
				select {
				case <-ctx.Done():
					return
				case sig := <-ch:
					logrus.WithField("signal", sig.String()).Info("reset requested")
					h.Trigger()
				}
			}
		}()
	})
	return installed
}
