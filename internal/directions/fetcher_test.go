package directions_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/campusnav/campusnav/internal/directions"
	"github.com/campusnav/campusnav/pkg/geo"
)

// mockProvider is a mock routing provider for testing.
type mockProvider struct {
	result    *directions.RouteResult
	err       error
	callCount atomic.Int32

	// onFetch, when set, runs before the result is returned. Used to race
	// a session change against an in-flight fetch.
	onFetch func()
}

func (m *mockProvider) FetchRoute(_ context.Context, _, _ geo.Coordinate, _ directions.TransportMode) (*directions.RouteResult, error) {
	m.callCount.Add(1)
	if m.onFetch != nil {
		m.onFetch()
	}
	if m.err != nil {
		return nil, m.err
	}
	result := *m.result
	return &result, nil
}

func (m *mockProvider) Name() string { return "mock-provider" }

func TestFetcher_DeliversStampedResult(t *testing.T) {
	c := newController()
	result := twoStepRoute()
	provider := &mockProvider{result: &result}
	fetcher := directions.NewFetcher(directions.FetcherConfig{
		Controller: c,
		Provider:   provider,
		Logger:     zerolog.Nop(),
	})

	c.Start(origin, destination)
	if err := fetcher.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st := c.State()
	if len(st.Steps) != 2 {
		t.Errorf("expected route applied, got %d steps", len(st.Steps))
	}
	if st.Loading {
		t.Error("expected loading cleared after apply")
	}
	if provider.callCount.Load() != 1 {
		t.Errorf("expected 1 provider call, got %d", provider.callCount.Load())
	}
}

func TestFetcher_NoSessionIsANoOp(t *testing.T) {
	c := newController()
	provider := &mockProvider{result: &directions.RouteResult{}}
	fetcher := directions.NewFetcher(directions.FetcherConfig{
		Controller: c,
		Provider:   provider,
		Logger:     zerolog.Nop(),
	})

	if err := fetcher.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.callCount.Load() != 0 {
		t.Error("expected no provider call without a session")
	}
}

func TestFetcher_SurfacesProviderErrors(t *testing.T) {
	c := newController()
	provider := &mockProvider{err: errors.New("upstream timeout")}
	fetcher := directions.NewFetcher(directions.FetcherConfig{
		Controller: c,
		Provider:   provider,
		Logger:     zerolog.Nop(),
	})

	c.Start(origin, destination)
	if err := fetcher.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	st := c.State()
	if st.Error != "upstream timeout" {
		t.Errorf("expected error surfaced in state, got %q", st.Error)
	}
	if st.Loading {
		t.Error("expected loading cleared on error")
	}
}

func TestFetcher_SessionEndedMidFetchDropsResult(t *testing.T) {
	c := newController()
	result := twoStepRoute()
	provider := &mockProvider{result: &result}
	// End the session while the fetch is in flight.
	provider.onFetch = func() { c.End() }

	fetcher := directions.NewFetcher(directions.FetcherConfig{
		Controller: c,
		Provider:   provider,
		Logger:     zerolog.Nop(),
	})

	c.Start(origin, destination)
	if err := fetcher.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if st := c.State(); len(st.Steps) != 0 {
		t.Error("a route fetched for an ended session must be dropped")
	}
}
