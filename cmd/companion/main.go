// Package main runs the companion daemon: it receives the signed in identity
// from the primary over the redis sync channel and renders the user's stats.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2beens/volumetracker/internal/backend"
	"github.com/2beens/volumetracker/internal/charts"
	"github.com/2beens/volumetracker/internal/companion"
	"github.com/2beens/volumetracker/internal/config"
	"github.com/2beens/volumetracker/internal/logging"
	"github.com/2beens/volumetracker/internal/telemetry/metrics"
	"github.com/2beens/volumetracker/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const statsTopExercises = 3

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	refreshInterval := flag.Duration("refresh", 5*time.Minute, "how often the stats are refetched")
	metricsAddr := flag.String("metrics-addr", "", "serve prometheus metrics on this address (empty to disable)")
	width := flag.Int("width", 40, "chart width in terminal columns")
	device := flag.String("device", "", "pairing id of the primary device this companion follows")
	flag.Parse()

	if err := companion.ValidateDevice(*device); err != nil {
		fmt.Fprintf(os.Stderr, "%s, set -device to the id the phone signs in with\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogToStdout:      true,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: "volume-tracker-companion",
	})

	apiKey := os.Getenv("TRACKER_API_KEY")
	if apiKey == "" {
		log.Errorf("backend API key not set. use TRACKER_API_KEY")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: os.Getenv("TRACKER_REDIS_PASS"),
		DB:       0, // use default DB
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}()

	otelShutdown, err := tracing.HoneycombSetup(os.Getenv("HONEYCOMB_ENABLED") == "true", "volume-tracker-companion", rdb)
	if err != nil {
		log.Fatalf("honeycomb setup: %s", err)
	}
	defer otelShutdown()

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("tracker", "companion", promRegistry)
	if *metricsAddr != "" {
		go func() {
			log.Debugf(" > metrics listening on: [%s]", *metricsAddr)
			err := http.ListenAndServe(*metricsAddr, promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("metrics listen and serve: %s", err)
			}
		}()
	}

	api := backend.NewApi(backend.ApiParams{
		BaseURL:    cfg.BackendBaseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		Timeout:    cfg.BackendTimeout.Duration,
		Metrics:    metricsManager,
	})

	transport := companion.NewRedisTransport(rdb, companion.DevicePrefix(cfg.CompanionPrefix, *device), companion.SideCompanion)
	if err := transport.Activate(ctx); err != nil {
		log.Fatalf("activate companion transport: %s", err)
	}
	defer func() {
		if err := transport.Close(); err != nil {
			log.Errorf("close companion transport: %s", err)
		}
	}()

	comp := companion.NewCompanion(transport, metricsManager)
	show := func(identity string) {
		if identity == companion.Unknown {
			fmt.Println(charts.LoginPrompt)
			return
		}
		summary, err := api.FetchSummary(ctx, identity)
		if err != nil {
			log.Errorf("fetch summary for %s: %s", identity, err)
			fmt.Println(backendMessage(err))
			return
		}
		fmt.Println(charts.RenderStats(summary, time.Now(), statsTopExercises, *width))
	}
	comp.OnIdentityChange(show)
	show(comp.Identity())

	go func() {
		if err := comp.Run(ctx); err != nil {
			log.Errorf("companion run: %s", err)
			cancel()
		}
	}()

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	// keep the installed marker alive, it expires when the daemon stops
	announceTicker := time.NewTicker(companion.DefaultInstalledTTL / 2)
	defer announceTicker.Stop()
	refreshTicker := time.NewTicker(*refreshInterval)
	defer refreshTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-chOsInterrupt:
			log.Warnf("signal [%s] received, stopping companion ...", sig)
			return
		case <-announceTicker.C:
			if err := transport.Announce(ctx); err != nil {
				log.Errorf("announce companion: %s", err)
			}
		case <-refreshTicker.C:
			if comp.LoginRequired() {
				comp.RequestIdentity(ctx)
				continue
			}
			show(comp.Identity())
		}
	}
}

func backendMessage(err error) string {
	var bErr *backend.Error
	if errors.As(err, &bErr) {
		return bErr.UserMessage()
	}
	return "Something went wrong."
}
