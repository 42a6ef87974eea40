package schemaserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siegeai/schemagen/infer"
	"github.com/siegeai/schemagen/jsonschema"
)

type recorder struct {
	mu      sync.Mutex
	updates []SchemaUpdate
	auth    []string
	status  int
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	if r.URL.Path != "/api/v1/schemas/update" || r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var update SchemaUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	rec.updates = append(rec.updates, update)
	rec.auth = append(rec.auth, r.Header.Get("Authorization"))

	if rec.status != 0 {
		w.WriteHeader(rec.status)
	}
}

func (rec *recorder) count() int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return len(rec.updates)
}

func newTestClient(t *testing.T, rec *recorder) *Client {
	t.Helper()
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	c, err := NewClient("secret", srv.URL+"/")
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresServer(t *testing.T) {
	_, err := NewClient("key", "")
	assert.ErrorIs(t, err, ErrMissingServer)
}

func TestClientUpdate(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, rec)

	s, err := jsonschema.Unmarshal([]byte(`{"type":["null","string"]}`))
	require.NoError(t, err)

	err = c.Update(context.Background(), SchemaUpdate{
		Schemas: []PublishedSchema{{Name: "users", Revision: 3, Schema: jsonschema.Document{Schema: s}}},
	})
	require.NoError(t, err)

	require.Len(t, rec.updates, 1)
	assert.Equal(t, "Bearer secret", rec.auth[0])
	got := rec.updates[0].Schemas[0]
	assert.Equal(t, "users", got.Name)
	assert.Equal(t, 3, got.Revision)
	assert.JSONEq(t, `{"type":["null","string"]}`, string(jsonschema.Marshal(got.Schema.Schema)))
}

func TestClientUpdateUnexpectedResponse(t *testing.T) {
	rec := &recorder{status: http.StatusUnauthorized}
	c := newTestClient(t, rec)

	err := c.Update(context.Background(), SchemaUpdate{})
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestPublishSendsOnlyChanges(t *testing.T) {
	rec := &recorder{}
	registry := infer.NewRegistry(jsonschema.Options{}, nil)
	p := NewPublisher(registry, newTestClient(t, rec), time.Minute)

	n, err := p.Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, rec.count())

	_, err = registry.Observe("a", []byte(`{"x": 1}`))
	require.NoError(t, err)
	_, err = registry.Observe("b", []byte(`"s"`))
	require.NoError(t, err)

	n, err = p.Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, p.ID, rec.updates[0].PublisherID)

	_, err = registry.Observe("a", []byte(`{"x": 2}`))
	require.NoError(t, err)
	n, err = p.Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = registry.Observe("a", []byte(`{"x": "changed"}`))
	require.NoError(t, err)
	n, err = p.Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, rec.updates, 2)
	assert.Equal(t, "a", rec.updates[1].Schemas[0].Name)
	assert.Equal(t, 2, rec.updates[1].Schemas[0].Revision)
}

func TestPublishRetriesAfterFailure(t *testing.T) {
	rec := &recorder{status: http.StatusInternalServerError}
	registry := infer.NewRegistry(jsonschema.Options{}, nil)
	p := NewPublisher(registry, newTestClient(t, rec), time.Minute)

	_, err := registry.Observe("a", []byte(`1`))
	require.NoError(t, err)

	_, err = p.Publish(context.Background())
	assert.ErrorIs(t, err, ErrUnexpectedResponse)

	rec.mu.Lock()
	rec.status = 0
	rec.mu.Unlock()

	n, err := p.Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPublishJobFlushesOnShutdown(t *testing.T) {
	rec := &recorder{}
	registry := infer.NewRegistry(jsonschema.Options{}, nil)
	p := NewPublisher(registry, newTestClient(t, rec), time.Hour)

	_, err := registry.Observe("a", []byte(`[1]`))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	go p.PublishJob(ctx, wg)

	cancel()
	wg.Wait()
	assert.Equal(t, 1, rec.count())
}
