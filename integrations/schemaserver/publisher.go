package schemaserver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/siegeai/schemagen/infer"
	"github.com/siegeai/schemagen/jsonschema"
)

type Updater interface {
	Update(ctx context.Context, args SchemaUpdate) error
}

// Publisher pushes registry entries whose revision changed since the last successful
// publish.
type Publisher struct {
	ID       uuid.UUID
	registry *infer.Registry
	client   Updater
	interval time.Duration

	mu        sync.Mutex
	published map[string]publishedRevision
}

type publishedRevision struct {
	id       uuid.UUID
	revision int
}

func NewPublisher(registry *infer.Registry, client Updater, interval time.Duration) *Publisher {
	return &Publisher{
		ID:        uuid.New(),
		registry:  registry,
		client:    client,
		interval:  interval,
		published: make(map[string]publishedRevision),
	}
}

// Publish sends one update with every changed entry. It returns the number of entries
// sent; nothing is sent when nothing changed.
func (p *Publisher) Publish(ctx context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var changed []infer.Entry
	for _, e := range p.registry.List() {
		last, ok := p.published[e.Name]
		if ok && last.id == e.ID && last.revision == e.Revision {
			continue
		}
		changed = append(changed, e)
	}
	if len(changed) == 0 {
		return 0, nil
	}

	update := SchemaUpdate{PublisherID: p.ID, Schemas: make([]PublishedSchema, len(changed))}
	for i, e := range changed {
		update.Schemas[i] = PublishedSchema{
			Name:      e.Name,
			ID:        e.ID,
			Revision:  e.Revision,
			Samples:   e.Samples,
			UpdatedAt: e.UpdatedAt,
			Schema:    jsonschema.Document{Schema: e.Schema},
		}
	}

	if err := p.client.Update(ctx, update); err != nil {
		return 0, err
	}

	for _, e := range changed {
		p.published[e.Name] = publishedRevision{id: e.ID, revision: e.Revision}
	}
	return len(changed), nil
}

// PublishJob publishes on every tick until ctx is done, then makes one last attempt.
func (p *Publisher) PublishJob(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.publishAndLog(ctx)

		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			p.publishAndLog(final)
			cancel()
			return
		}
	}
}

func (p *Publisher) publishAndLog(ctx context.Context) {
	n, err := p.Publish(ctx)
	if err != nil {
		slog.Warn("could not publish schemas", "err", err)
		return
	}
	if n > 0 {
		slog.Info("published schemas", "count", n)
	}
}
