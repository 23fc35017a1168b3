package planner

import (
	"context"
	"ev-route-planner/internal/domain"
	"ev-route-planner/internal/platform/metrics"
	"ev-route-planner/internal/ports"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultDebounce = 250 * time.Millisecond

const searchFallback = "address search unavailable"

// ShouldFetch reports whether text is long enough to query the geocoder.
func ShouldFetch(text string) bool {
	return len(strings.TrimSpace(text)) > 2
}

// Suggester turns free-text input into geocoded suggestions. Only the
// completion of the most recently issued search may replace the list.
type Suggester struct {
	geocoder ports.Geocoder
	selector *PointSelector
	notify   Notifier
	debounce time.Duration

	mu          sync.Mutex
	query       string
	suggestions []domain.Suggestion
	seq         uint64
	timer       *time.Timer

	pending sync.WaitGroup
}

func NewSuggester(geocoder ports.Geocoder, selector *PointSelector, notify Notifier, debounce time.Duration) *Suggester {
	if debounce < 0 {
		debounce = 0
	}
	return &Suggester{
		geocoder: geocoder,
		selector: selector,
		notify:   notify,
		debounce: debounce,
	}
}

// SetQuery stores text and, when it is long enough, schedules a search after
// the debounce window. Earlier scheduled or in-flight searches are superseded.
func (s *Suggester) SetQuery(ctx context.Context, text string) {
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = text
	s.seq++
	s.stopTimerLocked()

	if !ShouldFetch(text) {
		s.suggestions = nil
		return
	}

	seq := s.seq
	s.pending.Add(1)
	if s.debounce == 0 {
		go s.fetch(ctx, seq, text)
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.fetch(ctx, seq, text)
	})
}

func (s *Suggester) fetch(ctx context.Context, seq uint64, text string) {
	defer s.pending.Done()

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	metrics.RequestsIssued.WithLabelValues(metrics.OpSearch).Inc()
	results, err := s.geocoder.Search(ctx, text)

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		metrics.StaleResponses.WithLabelValues(metrics.OpSearch).Inc()
		logrus.WithFields(logrus.Fields{"query": text, "seq": seq}).Debug("discarding stale suggestions")
		return
	}
	if err != nil {
		s.mu.Unlock()
		metrics.RequestFailures.WithLabelValues(metrics.OpSearch).Inc()
		logrus.WithError(err).WithField("query", text).Warn("address search failed")
		s.notify.Notify(LevelWarn, UserMessage(err, searchFallback))
		return
	}
	if len(results) > domain.MaxSuggestions {
		results = results[:domain.MaxSuggestions]
	}
	s.suggestions = append([]domain.Suggestion(nil), results...)
	s.mu.Unlock()
}

// Select confirms suggestion i. The query and the list are cleared and the
// waypoint goes to slot, or to the first empty slot when slot is SlotNone.
func (s *Suggester) Select(i int, slot Slot) (Slot, error) {
	s.mu.Lock()
	if i < 0 || i >= len(s.suggestions) {
		s.mu.Unlock()
		return SlotNone, fmt.Errorf("select %d: %w", i, ErrNoSuggestion)
	}
	chosen := s.suggestions[i]
	s.query = ""
	s.suggestions = nil
	s.seq++
	s.stopTimerLocked()
	s.mu.Unlock()

	if slot == SlotNone {
		got, ok := s.selector.Accept(chosen.Waypoint())
		if !ok {
			s.notify.Notify(LevelInfo, "start and destination are already set")
		}
		return got, nil
	}
	if err := s.selector.Assign(slot, chosen.Waypoint()); err != nil {
		return SlotNone, fmt.Errorf("select %d: %w", i, err)
	}
	return slot, nil
}

// Reset clears the query and list and supersedes any pending search.
func (s *Suggester) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = ""
	s.suggestions = nil
	s.seq++
	s.stopTimerLocked()
}

func (s *Suggester) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *Suggester) Suggestions() []domain.Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Suggestion(nil), s.suggestions...)
}

// Wait blocks until every scheduled or in-flight search has finished.
func (s *Suggester) Wait() {
	s.pending.Wait()
}

func (s *Suggester) stopTimerLocked() {
	if s.timer == nil {
		return
	}
	if s.timer.Stop() {
		s.pending.Done()
	}
	s.timer = nil
}
