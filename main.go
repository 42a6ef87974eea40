package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/siegeai/schemagen/infer"
	"github.com/siegeai/schemagen/integrations/schemaserver"
	"github.com/siegeai/schemagen/jsonschema"
	"github.com/siegeai/schemagen/server"
)

const version = "0.1.0"

func main() {
	_ = godotenv.Load()
	addr := getEnv("SCHEMAGEN_ADDR", ":8080")
	level := getEnv("SCHEMAGEN_LOG", "info")
	publishURL := getEnv("SCHEMAGEN_PUBLISH_URL", "")
	apikey := getEnv("SCHEMAGEN_APIKEY", "")
	interval := getEnv("SCHEMAGEN_PUBLISH_INTERVAL", "30s")
	basePath := getEnv("SCHEMAGEN_OPENAPI_BASE", "")

	err := setupLogging(level)
	if err != nil {
		slog.Error("could not init logging", "err", err)
		return
	}

	opts, err := registryOptions()
	if err != nil {
		slog.Error("could not read registry options", "err", err)
		return
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry := infer.NewRegistry(opts, infer.NewMetrics(reg))

	handler := server.New(registry, reg, version)
	if basePath != "" {
		base, err := openapi3.NewLoader().LoadFromFile(basePath)
		if err != nil {
			slog.Error("could not load base document", "path", basePath, "err", err)
			return
		}
		handler.SetBaseDocument(base)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	term := make(chan os.Signal, 1)
	signal.Notify(term, syscall.SIGINT, syscall.SIGTERM)

	wg := &sync.WaitGroup{}
	defer wg.Wait()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if publishURL != "" {
		p, err := newPublisher(registry, publishURL, apikey, interval)
		if err != nil {
			slog.Error("could not init publisher", "err", err)
			return
		}
		wg.Add(1)
		go p.PublishJob(ctx, wg)
		slog.Info("publishing schemas", "server", publishURL, "interval", interval)
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()
	slog.Info("listening", "addr", addr)

	select {
	case <-term:
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "err", err)
		}
		return
	}

	shutdown, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdown); err != nil {
		slog.Warn("could not shut down cleanly", "err", err)
	}
}

func newPublisher(registry *infer.Registry, serverURL, apikey, interval string) (*schemaserver.Publisher, error) {
	d, err := time.ParseDuration(interval)
	if err != nil {
		return nil, err
	}
	if d <= 0 {
		return nil, errors.New("SCHEMAGEN_PUBLISH_INTERVAL must be positive")
	}
	client, err := schemaserver.NewClient(apikey, serverURL)
	if err != nil {
		return nil, err
	}
	return schemaserver.NewPublisher(registry, client, d), nil
}

func registryOptions() (jsonschema.Options, error) {
	var opts jsonschema.Options
	var err error
	if opts.RestrictiveNulls, err = getEnvBool("SCHEMAGEN_RESTRICTIVE_NULLS"); err != nil {
		return opts, err
	}
	if opts.NoRequired, err = getEnvBool("SCHEMAGEN_NO_REQUIRED"); err != nil {
		return opts, err
	}
	return opts, nil
}

func setupLogging(level string) error {
	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(level))
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
	return err
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvBool(key string) (bool, error) {
	val := getEnv(key, "")
	if val == "" {
		return false, nil
	}
	return strconv.ParseBool(val)
}
