package server

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/siegeai/schemagen/infer"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 8 << 20

type Server struct {
	router   *mux.Router
	registry *infer.Registry
	metrics  http.Handler
	base     *openapi3.T
	title    string
	version  string
}

// New wires the routes over registry. Metrics from gatherer are served on /metrics; a nil
// gatherer uses the default prometheus registry.
func New(registry *infer.Registry, gatherer prometheus.Gatherer, version string) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		router:   mux.NewRouter(),
		registry: registry,
		metrics:  promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
		title:    "schemagen",
		version:  version,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetBaseDocument makes /openapi.json lay the registry schemas over doc.
func (s *Server) SetBaseDocument(doc *openapi3.T) {
	s.base = doc
}
