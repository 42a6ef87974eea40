package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
	"github.com/valyala/fastjson"

	"github.com/siegeai/schemagen/apispec"
	"github.com/siegeai/schemagen/infer"
	"github.com/siegeai/schemagen/jsonschema"
)

var errBadRequest = errors.New("bad request")

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/schema", s.handleCreate()).Methods("POST")
	s.router.HandleFunc("/schema/compound", s.handleCompound()).Methods("POST")
	s.router.HandleFunc("/schema/merge", s.handleMerge()).Methods("POST")
	s.router.HandleFunc("/schema/extend", s.handleExtend()).Methods("POST")
	s.router.HandleFunc("/schema/equal", s.handleEqual()).Methods("POST")
	s.router.HandleFunc("/schema/subset", s.handleSubset()).Methods("POST")
	s.router.HandleFunc("/samples/{name}", s.handleObserve()).Methods("POST")
	s.router.HandleFunc("/schemas", s.handleList()).Methods("GET")
	s.router.HandleFunc("/schemas/{name}", s.handleGet()).Methods("GET")
	s.router.HandleFunc("/schemas/{name}", s.handleDelete()).Methods("DELETE")
	s.router.HandleFunc("/openapi.json", s.handleOpenAPI()).Methods("GET")
	s.router.Handle("/metrics", s.metrics).Methods("GET")
	s.router.Use(logMiddleware)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.New()
		w.Header().Set("X-Request-Id", id.String())

		ww := negroni.NewResponseWriter(w)
		next.ServeHTTP(ww, r)
		slog.Info("request",
			"id", id,
			"method", r.Method,
			"path", r.RequestURI,
			"status", ww.Status(),
			"size", ww.Size(),
			"duration", time.Since(start))
	})
}

func (s *Server) handleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := parseOptions(r.URL.Query())
		if err != nil {
			writeError(w, err)
			return
		}
		body, err := readBody(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		sch, err := jsonschema.ParseSampleBytes(body, opts)
		if err != nil {
			writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		writeSchema(w, sch)
	}
}

func (s *Server) handleCompound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := parseOptions(r.URL.Query())
		if err != nil {
			writeError(w, err)
			return
		}
		v, err := parseBody(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		elems, err := v.Array()
		if err != nil {
			writeError(w, fmt.Errorf("%w: expected an array of samples", errBadRequest))
			return
		}
		values := make([]any, len(elems))
		for i, e := range elems {
			values[i] = e
		}
		sch, err := jsonschema.CreateCompoundSchema(values, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSchema(w, sch)
	}
}

func (s *Server) handleMerge() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := parseOptions(r.URL.Query())
		if err != nil {
			writeError(w, err)
			return
		}
		v, err := parseBody(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		elems, err := v.Array()
		if err != nil {
			writeError(w, fmt.Errorf("%w: expected an array of schemas", errBadRequest))
			return
		}
		schemas := make([]jsonschema.Schema, len(elems))
		for i, e := range elems {
			schemas[i], err = decodeSchema(e, fmt.Sprintf("[%d]", i))
			if err != nil {
				writeError(w, err)
				return
			}
		}
		writeSchema(w, jsonschema.MergeSchemas(schemas, opts))
	}
}

func (s *Server) handleExtend() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := parseOptions(r.URL.Query())
		if err != nil {
			writeError(w, err)
			return
		}
		v, err := parseBody(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		var base jsonschema.Schema
		if sv := v.Get("schema"); sv != nil && sv.Type() != fastjson.TypeNull {
			base, err = decodeSchema(sv, "schema")
			if err != nil {
				writeError(w, err)
				return
			}
		}
		value := v.Get("value")
		if value == nil {
			writeError(w, fmt.Errorf("%w: missing value", errBadRequest))
			return
		}
		sch, err := jsonschema.ExtendSchema(base, value, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSchema(w, sch)
	}
}

func (s *Server) handleEqual() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, a, b, err := parsePair(w, r, "a", "b")
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"equal": jsonschema.AreSchemasEqual(a, b, opts)})
	}
}

func (s *Server) handleSubset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, super, sub, err := parsePair(w, r, "superset", "subset")
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"subset": jsonschema.IsSubset(super, sub, opts)})
	}
}

func (s *Server) handleObserve() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		body, err := readBody(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		e, err := s.registry.Observe(name, body)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func (s *Server) handleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.registry.List())
	}
}

func (s *Server) handleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := s.registry.Get(mux.Vars(r)["name"])
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func (s *Server) handleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.registry.Delete(mux.Vars(r)["name"]); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleOpenAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc := apispec.NewDocument(s.title, s.version, s.registry.Schemas())
		writeJSON(w, http.StatusOK, apispec.Overlay(s.base, doc))
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := readAllEncoded(r.Header.Get("Content-Encoding"), http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if errors.Is(err, errUnsupportedEncoding) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return body, nil
}

func parseBody(w http.ResponseWriter, r *http.Request) (*fastjson.Value, error) {
	body, err := readBody(w, r)
	if err != nil {
		return nil, err
	}
	v, err := fastjson.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return v, nil
}

func parsePair(w http.ResponseWriter, r *http.Request, first, second string) (jsonschema.Options, jsonschema.Schema, jsonschema.Schema, error) {
	opts, err := parseOptions(r.URL.Query())
	if err != nil {
		return opts, nil, nil, err
	}
	v, err := parseBody(w, r)
	if err != nil {
		return opts, nil, nil, err
	}
	a, err := decodeSchema(v.Get(first), first)
	if err != nil {
		return opts, nil, nil, err
	}
	b, err := decodeSchema(v.Get(second), second)
	if err != nil {
		return opts, nil, nil, err
	}
	return opts, a, b, nil
}

func decodeSchema(v *fastjson.Value, field string) (jsonschema.Schema, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: missing %s", errBadRequest, field)
	}
	s, err := jsonschema.FromFastJSON(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errBadRequest, field, err)
	}
	return s, nil
}

func writeSchema(w http.ResponseWriter, s jsonschema.Schema) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if s == nil {
		_, _ = w.Write([]byte("null"))
		return
	}
	_, _ = w.Write(jsonschema.Marshal(s))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("could not encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, infer.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errUnsupportedEncoding):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, errBadRequest),
		errors.Is(err, infer.ErrInvalidSample),
		errors.Is(err, jsonschema.ErrCircularReference):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
