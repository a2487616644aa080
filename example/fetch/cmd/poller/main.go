package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kroma-labs/networker/example/fetch/internal/catalog"
	"github.com/kroma-labs/networker/example/fetch/internal/config"
	"github.com/kroma-labs/networker/example/fetch/internal/telemetry"
	"github.com/kroma-labs/networker/httpclient"
)

func main() {
	ctx := context.Background()

	// 1. Setup OpenTelemetry (Tracing + Metrics)
	mux := http.NewServeMux()
	shutdown, err := telemetry.Setup(ctx, mux)
	if err != nil {
		log.Fatalf("Failed to setup OTel: %v", err)
	}
	defer shutdown(ctx)

	// 2. Start Prometheus Metrics Server
	metricsServer := &http.Server{Addr: config.MetricsPort, Handler: mux}
	go func() {
		log.Printf("Starting Prometheus metrics server on %s", config.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Metrics server failed: %v", err)
		}
	}()

	// 3. Build the instrumented client from NETWORKER_* variables
	cfg, err := httpclient.ConfigFromEnv(config.EnvPrefix)
	if err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}
	client := httpclient.New(
		httpclient.WithConfig(cfg),
		httpclient.WithServiceName(config.ServiceName),
		httpclient.WithRequestInterceptor(httpclient.CorrelationIDInterceptor("", nil)),
	)
	products := catalog.New(client)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(config.PollInterval) * time.Second)
	defer ticker.Stop()

	fmt.Println("Fetch example started")
	fmt.Println("Prometheus metrics: http://localhost:2112/metrics")
	fmt.Println("Press Ctrl+C to stop...")

	id := 1
	for {
		select {
		case <-ticker.C:
			p, err := products.Product(ctx, id)
			switch {
			case errors.Is(err, httpclient.ErrUnsuccessfulHTTPStatusCode):
				e, _ := httpclient.AsError(err)
				log.Printf("Product %d: %s", id, e.Response.LocalizedStatusCode())
			case err != nil:
				log.Printf("Product %d: %v", id, err)
			default:
				log.Printf("Product %d: %s (%.2f)", p.ID, p.Title, p.Price)
			}
			id = id%30 + 1

		case <-sigChan:
			fmt.Println("\nShutting down gracefully...")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				log.Printf("Metrics server shutdown error: %v", err)
			}
			return
		}
	}
}
