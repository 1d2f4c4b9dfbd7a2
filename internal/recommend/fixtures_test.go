// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package recommend

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

// staticSource implements DataSource for testing.
type staticSource struct {
	mu    sync.Mutex
	snap  Snapshot
	err   error
	calls atomic.Int32
}

func (s *staticSource) Snapshot(ctx context.Context) (Snapshot, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return Snapshot{}, s.err
	}
	return s.snap, nil
}

func (s *staticSource) setSnapshot(snap Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

func (s *staticSource) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// blockingSource blocks every Snapshot call until release is closed.
type blockingSource struct {
	snap    Snapshot
	entered chan struct{}
	release chan struct{}
}

func newBlockingSource(snap Snapshot) *blockingSource {
	return &blockingSource{
		snap:    snap,
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (s *blockingSource) Snapshot(ctx context.Context) (Snapshot, error) {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	select {
	case <-s.release:
		return s.snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// memStore implements GenerationStore in memory.
type memStore struct {
	mu      sync.Mutex
	saved   []*Generation
	saveErr error
}

func (m *memStore) Save(ctx context.Context, g *Generation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, g)
	return nil
}

func (m *memStore) Load(ctx context.Context) (*Generation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saved) == 0 {
		return nil, ErrNotReady
	}
	return m.saved[len(m.saved)-1], nil
}

// recordingSink implements EventSink for testing.
type recordingSink struct {
	mu     sync.Mutex
	events []TrainingEvent
}

func (r *recordingSink) Publish(ctx context.Context, ev TrainingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingSink) snapshot() []TrainingEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TrainingEvent(nil), r.events...)
}

// retailSnapshot is a small grocery catalog with two loose clusters, tea
// buyers and coffee buyers, plus C6 who never bought anything.
func retailSnapshot() Snapshot {
	return Snapshot{
		Products: []Product{
			{ID: "P1", Name: "Organic Green Tea", Category: "Beverages"},
			{ID: "P2", Name: "Green Tea Bags", Category: "Beverages"},
			{ID: "P3", Name: "Dark Roast Coffee", Category: "Beverages"},
			{ID: "P4", Name: "Coffee Grinder", Category: "Kitchen"},
			{ID: "P5", Name: "Ceramic Tea Pot", Category: "Kitchen"},
			{ID: "P6", Name: "Espresso Coffee Beans", Category: "Beverages"},
		},
		Customers: []string{"C1", "C2", "C3", "C4", "C5", "C6"},
		Transactions: []Transaction{
			{CustomerID: "C1", ProductID: "P1", Quantity: 2, Total: 20},
			{CustomerID: "C1", ProductID: "P2", Quantity: 1, Total: 6},
			{CustomerID: "C2", ProductID: "P1", Quantity: 1, Total: 10},
			{CustomerID: "C2", ProductID: "P5", Quantity: 1, Total: 35},
			{CustomerID: "C3", ProductID: "P3", Quantity: 3, Total: 45},
			{CustomerID: "C3", ProductID: "P6", Quantity: 1, Total: 18},
			{CustomerID: "C4", ProductID: "P3", Quantity: 1, Total: 15},
			{CustomerID: "C4", ProductID: "P4", Quantity: 1, Total: 60},
			{CustomerID: "C5", ProductID: "P1", Quantity: 1, Total: 10},
			{CustomerID: "C5", ProductID: "P2", Quantity: 2, Total: 12},
			{CustomerID: "C5", ProductID: "P5", Quantity: 1, Total: 35},
		},
	}
}

// testConfig returns a config small enough for fast training.
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.ALS.Factors = 4
	cfg.ALS.Iterations = 10
	cfg.ALS.Workers = 2
	cfg.Content.Workers = 2
	cfg.Evaluation.Workers = 2
	return cfg
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestEngine(t *testing.T, cfg *Config, src DataSource) *Engine {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	e, err := NewEngine(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if src != nil {
		e.SetDataSource(src)
	}
	return e
}

// trainedEngine returns an engine trained on retailSnapshot.
func trainedEngine(t *testing.T) *Engine {
	t.Helper()
	e := newTestEngine(t, nil, &staticSource{snap: retailSnapshot()})
	if _, err := e.Train(context.Background()); err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	return e
}

func ids(items []ScoredProduct) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ProductID
	}
	return out
}

func assertDescending(t *testing.T, items []ScoredProduct) {
	t.Helper()
	for i := 1; i < len(items); i++ {
		if items[i].Score > items[i-1].Score {
			t.Errorf("items[%d].Score = %f > items[%d].Score = %f", i, items[i].Score, i-1, items[i-1].Score)
		}
	}
}

func assertDistinct(t *testing.T, items []ScoredProduct) {
	t.Helper()
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.ProductID] {
			t.Errorf("duplicate product %q in %v", it.ProductID, ids(items))
		}
		seen[it.ProductID] = true
	}
}
