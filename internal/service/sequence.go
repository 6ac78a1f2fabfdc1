package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"daoapi/internal/repository"
)

var tracer = otel.Tracer("daoapi/internal/service")

// NumberAllocator hands out dossier numbers.
type NumberAllocator interface {
	Allocate(ctx context.Context) (string, error)
}

// FormatDossierNumber renders DAO-<year>-<counter>, padding the counter to at least three digits.
func FormatDossierNumber(year, counter int) string {
	return fmt.Sprintf("DAO-%d-%03d", year, counter)
}

// AllocatorMetrics counts allocation outcomes.
type AllocatorMetrics struct {
	allocated prometheus.Counter
	failures  prometheus.Counter
	races     prometheus.Counter
}

// NewAllocatorMetrics registers the allocator counters on reg.
func NewAllocatorMetrics(reg prometheus.Registerer) (*AllocatorMetrics, error) {
	m := &AllocatorMetrics{
		allocated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dao_numbers_allocated_total",
			Help: "Dossier numbers handed out.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dao_number_allocation_failures_total",
			Help: "Allocation attempts that failed on the datastore.",
		}),
		races: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dao_number_allocation_races_total",
			Help: "First-of-year inserts lost to a concurrent caller.",
		}),
	}
	for _, c := range []prometheus.Collector{m.allocated, m.failures, m.races} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// SequenceAllocator issues year-scoped dossier numbers backed by a counter row per year.
//
// The counter is only ever changed by a conditional increment or by inserting the first
// row of a year, so uniqueness holds across processes sharing the datastore. When two
// callers race on the first number of a year, the loser of the insert re-runs the
// increment instead of inserting again.
type SequenceAllocator struct {
	repo    repository.SequenceRepository
	clock   Clock
	metrics *AllocatorMetrics
}

// NewSequenceAllocator builds an allocator. metrics may be nil.
func NewSequenceAllocator(repo repository.SequenceRepository, clock Clock, metrics *AllocatorMetrics) *SequenceAllocator {
	return &SequenceAllocator{repo: repo, clock: clock, metrics: metrics}
}

var _ NumberAllocator = (*SequenceAllocator)(nil)

// Allocate returns the next number for the current calendar year.
// On any datastore failure it returns an error wrapping ErrStorageUnavailable and no number.
func (a *SequenceAllocator) Allocate(ctx context.Context) (string, error) {
	year := a.clock.Now().Year()

	ctx, span := tracer.Start(ctx, "sequence.allocate", trace.WithAttributes(attribute.Int("dao.year", year)))
	defer span.End()

	counter, err := a.next(ctx, year)
	if err != nil {
		a.count(func(m *AllocatorMetrics) prometheus.Counter { return m.failures })
		span.RecordError(err)
		span.SetStatus(codes.Error, "allocation failed")
		return "", err
	}

	a.count(func(m *AllocatorMetrics) prometheus.Counter { return m.allocated })
	number := FormatDossierNumber(year, counter)
	span.SetAttributes(attribute.Int("dao.counter", counter), attribute.String("dao.number", number))
	return number, nil
}

func (a *SequenceAllocator) next(ctx context.Context, year int) (int, error) {
	counter, err := a.repo.Increment(ctx, year)
	if err == nil {
		return counter, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, unavailable("increment counter", err)
	}

	err = a.repo.Insert(ctx, year)
	if err == nil {
		return 1, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return 0, unavailable("insert counter", err)
	}

	a.count(func(m *AllocatorMetrics) prometheus.Counter { return m.races })
	counter, err = a.repo.Increment(ctx, year)
	if err != nil {
		return 0, unavailable("increment counter after insert race", err)
	}
	return counter, nil
}

func (a *SequenceAllocator) count(pick func(*AllocatorMetrics) prometheus.Counter) {
	if a.metrics != nil {
		pick(a.metrics).Inc()
	}
}
