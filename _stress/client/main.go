package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/siegeai/schemagen/fake"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	addr := flag.String("addr", "http://localhost:8080", "the service to post samples to")
	workers := flag.Int("w", 1, "concurrent callers")
	calls := flag.Int("n", 1, "calls per caller, 0 runs forever")
	names := flag.Int("names", 4, "distinct schema names to spread samples over")
	pause := flag.Duration("pause", 10*time.Millisecond, "sleep between calls")
	flag.Parse()

	if *names < 1 {
		return fmt.Errorf("names must be positive")
	}
	paths := make([]string, *names)
	for i := range paths {
		paths[i] = fmt.Sprintf("%s/samples/%s", *addr, fake.String(12))
	}

	wg := &sync.WaitGroup{}
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go caller(wg, int64(i), paths, *calls, *pause)
	}
	wg.Wait()
	return nil
}

func caller(wg *sync.WaitGroup, seed int64, paths []string, calls int, pause time.Duration) {
	defer wg.Done()

	g := fake.New(seed)
	buf := &bytes.Buffer{}
	for i := 0; calls == 0 || i < calls; i++ {
		buf.Reset()
		url := paths[i%len(paths)]
		if err := call(buf, url, g.Object()); err != nil {
			slog.Warn("request failed", "url", url, "err", err)
		}
		time.Sleep(pause)
	}
}

func call(buf *bytes.Buffer, url string, obj map[string]any) error {
	if err := json.NewEncoder(buf).Encode(&obj); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	_, err = io.Copy(io.Discard, res.Body)
	slog.Info("completed request", "url", url, "status", res.StatusCode)
	return err
}
