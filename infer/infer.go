package infer

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/siegeai/schemagen/jsonschema"
)

var (
	ErrNotFound      = errors.New("schema not found")
	ErrInvalidSample = errors.New("invalid sample")
)

// Entry is a snapshot of one named schema. Revision starts at 1 and grows only when
// a sample or merge actually changes the schema.
type Entry struct {
	Name      string            `json:"name"`
	ID        uuid.UUID         `json:"id"`
	Schema    jsonschema.Schema `json:"schema"`
	Samples   int               `json:"samples"`
	Revision  int               `json:"revision"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Registry accumulates named schemas from samples. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	opts    jsonschema.Options
	entries map[string]*Entry
	metrics *Metrics
	now     func() time.Time
}

func NewRegistry(opts jsonschema.Options, metrics *Metrics) *Registry {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Registry{
		opts:    opts,
		entries: make(map[string]*Entry),
		metrics: metrics,
		now:     time.Now,
	}
}

// Observe folds one JSON document into the schema called name.
func (r *Registry) Observe(name string, body []byte) (Entry, error) {
	s, err := jsonschema.ParseSampleBytes(body, r.opts)
	if err != nil {
		r.metrics.ParseErrors.Inc()
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidSample, err)
	}
	return r.update(name, s, 1), nil
}

// ObserveValue folds an in-memory value into the schema called name.
func (r *Registry) ObserveValue(name string, v any) (Entry, error) {
	s, err := jsonschema.CreateSchema(v, r.opts)
	if err != nil {
		return Entry{}, err
	}
	return r.update(name, s, 1), nil
}

// Merge joins s into the schema called name without counting a sample.
func (r *Registry) Merge(name string, s jsonschema.Schema) (Entry, error) {
	if s == nil {
		return Entry{}, fmt.Errorf("%w: empty schema", ErrInvalidSample)
	}
	return r.update(name, s, 0), nil
}

func (r *Registry) update(name string, s jsonschema.Schema, samples int) Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		e = &Entry{Name: name, ID: uuid.New(), Schema: s, Revision: 1, UpdatedAt: r.now()}
		r.entries[name] = e
		r.metrics.Revisions.WithLabelValues(name).Inc()
		r.metrics.Schemas.Set(float64(len(r.entries)))
	} else {
		next := jsonschema.Combine([]jsonschema.Schema{e.Schema, s}, r.opts)
		if !jsonschema.AreSchemasEqual(e.Schema, next, r.opts) {
			e.Revision += 1
			e.UpdatedAt = r.now()
			r.metrics.Revisions.WithLabelValues(name).Inc()
		}
		e.Schema = next
	}

	e.Samples += samples
	r.metrics.Samples.WithLabelValues(name).Add(float64(samples))
	return *e
}

func (r *Registry) Get(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return *e, nil
}

// List returns every entry sorted by name.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	res := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		res = append(res, *e)
	}
	r.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool {
		return res[i].Name < res[j].Name
	})
	return res
}

// Schemas returns the current schema of every entry by name.
func (r *Registry) Schemas() map[string]jsonschema.Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make(map[string]jsonschema.Schema, len(r.entries))
	for name, e := range r.entries {
		res[name] = e.Schema
	}
	return res
}

func (r *Registry) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(r.entries, name)
	r.metrics.forget(name)
	r.metrics.Schemas.Set(float64(len(r.entries)))
	return nil
}
