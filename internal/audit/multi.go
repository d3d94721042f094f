package audit

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// MultiSink fans one event out to several sinks in parallel. Every sink sees
// every event; the first error is returned after all appends finish.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink composes sinks. Nil entries are skipped so callers can pass
// optionally-configured sinks without guarding.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Append forwards the event to all sinks.
func (m *MultiSink) Append(ctx context.Context, event Event) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range m.sinks {
		g.Go(func() error {
			return s.Append(ctx, event)
		})
	}
	return g.Wait()
}
