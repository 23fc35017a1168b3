package fake

import (
	"context"
	"ev-route-planner/internal/domain"
	"fmt"
	"sync"
)

// Geocoder answers from a fixed table. Individual queries can be held so
// tests decide the order in which responses arrive.
type Geocoder struct {
	mu      sync.Mutex
	results map[string][]domain.Suggestion
	errs    map[string]error
	gates   map[string]*gate
	calls   []string
}

func NewGeocoder() *Geocoder {
	return &Geocoder{
		results: make(map[string][]domain.Suggestion),
		errs:    make(map[string]error),
		gates:   make(map[string]*gate),
	}
}

func (g *Geocoder) SetResult(query string, s []domain.Suggestion) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.results[query] = s
}

func (g *Geocoder) SetError(query string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errs[query] = err
}

// Hold blocks searches for query until the returned func is called.
func (g *Geocoder) Hold(query string) func() {
	g.mu.Lock()
	gt, ok := g.gates[query]
	if !ok {
		gt = &gate{}
		g.gates[query] = gt
	}
	g.mu.Unlock()
	return gt.hold()
}

func (g *Geocoder) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *Geocoder) Search(ctx context.Context, query string) ([]domain.Suggestion, error) {
	g.mu.Lock()
	g.calls = append(g.calls, query)
	gt := g.gates[query]
	g.mu.Unlock()

	if gt != nil {
		if err := gt.wait(ctx); err != nil {
			return nil, err
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.errs[query]; err != nil {
		return nil, err
	}
	res, ok := g.results[query]
	if !ok {
		return nil, fmt.Errorf("no fake result for %q", query)
	}
	return append([]domain.Suggestion(nil), res...), nil
}
