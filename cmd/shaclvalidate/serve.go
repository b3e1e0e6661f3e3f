package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/geoknoesis/shacl-go/metric"
	"github.com/geoknoesis/shacl-go/natsservice"
	"github.com/geoknoesis/shacl-go/validator"
)

var (
	natsURL     string
	subject     string
	queue       string
	metricsAddr string
	reqTimeout  time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer validation requests over NATS",
	Long: `Subscribes to a NATS subject and answers every request with the
validation report of its payload. A JSON configuration sent to
<subject>.configure replaces the shapes and formats without a restart.
Only http and https locators are dereferenced; --shape may still name a
local file, which is read before the service starts.

Example:
  shaclvalidate serve --shape https://example.org/shapes.ttl --nats-url nats://localhost:4222`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&natsURL, "nats-url", nats.DefaultURL, "NATS server URL")
	serveCmd.Flags().StringVar(&subject, "subject", natsservice.DefaultSubject, "subject receiving data payloads")
	serveCmd.Flags().StringVar(&queue, "queue", natsservice.DefaultQueue, "queue group shared by replicas")
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address serving Prometheus metrics, empty to disable")
	serveCmd.Flags().DurationVar(&reqTimeout, "timeout", natsservice.DefaultTimeout, "time limit for one request")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	metrics := metric.NewMetrics()
	registry := prometheus.NewRegistry()
	if err := metrics.Register(registry); err != nil {
		return err
	}

	action := validator.NewAction(
		validator.WithLogger(logger),
		validator.WithMetrics(metrics),
		validator.WithPatternTimeout(patternTimeout),
		validator.WithGraphIO(natsservice.RemoteGraphIO()))
	cfg, err := configuration(cmd)
	if err != nil {
		return err
	}
	if _, ok := cfg[validator.KeyShape]; ok {
		if err := action.Configure(ctx, cfg); err != nil {
			return err
		}
	} else {
		logger.Warn("starting unconfigured, send a configuration to the configure subject")
	}

	nc, err := nats.Connect(natsURL,
		nats.Name("shaclvalidate"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("disconnected from NATS", zap.Error(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("reconnected to NATS", zap.String("url", c.ConnectedUrl()))
		}))
	if err != nil {
		return fmt.Errorf("connect %s: %w", natsURL, err)
	}
	defer nc.Close()

	svc := natsservice.New(action, natsservice.Config{Subject: subject, Queue: queue, Timeout: reqTimeout}, logger)
	if err := svc.Start(ctx, nc); err != nil {
		return err
	}

	var srv *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
		logger.Info("serving metrics", zap.String("addr", metricsAddr))
	}

	logger.Info("validation service ready", zap.String("subject", subject), zap.String("queue", queue))
	<-ctx.Done()
	logger.Info("shutting down")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	return svc.Stop()
}
