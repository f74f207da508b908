package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"vicemergency-feed/internal/config"
	"vicemergency-feed/internal/dispatcher"
	"vicemergency-feed/internal/geo"
	"vicemergency-feed/internal/infra/feed"
	"vicemergency-feed/internal/infra/notifier"
	workerPkg "vicemergency-feed/internal/infra/worker"
	"vicemergency-feed/internal/observability/logging"
	"vicemergency-feed/internal/observability/tracing"
	"vicemergency-feed/internal/registry"
	"vicemergency-feed/internal/usecase/notify"
	"vicemergency-feed/internal/usecase/poll"
	"vicemergency-feed/internal/usecase/track"
)

const (
	webhookTimeout  = 30 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	logger := logging.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Load feed configuration (YAML)
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load configuration",
			slog.String("path", configPath),
			slog.Any("error", err))
		os.Exit(1)
	}

	lat, lon := cfg.HomeCoordinates()
	logger.Info("configuration loaded",
		slog.String("feed_url", cfg.FeedURL),
		slog.Float64("latitude", lat),
		slog.Float64("longitude", lon),
		slog.Float64("radius_km", cfg.RadiusKm),
		slog.Bool("statewide", cfg.Statewide),
		slog.Duration("scan_interval", cfg.ScanInterval.Std()))

	// Initialize tracing
	shutdownTracing, err := tracing.Init(ctx)
	if err != nil {
		logger.Warn("tracing initialization failed, continuing without traces",
			slog.Any("error", err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(shutdownCtx); err != nil {
				logger.Error("tracing shutdown failed", slog.Any("error", err))
			}
		}()
	}

	// Notification channels
	channels := buildChannels(logger, cfg)
	notifyService := notify.NewService(channels, workerConfig.NotifyMaxConcurrent)
	logger.Info("notification service initialized",
		slog.Int("channels", len(channels)),
		slog.Int("max_concurrent", workerConfig.NotifyMaxConcurrent))

	// Feed client and entity manager
	feedClient := feed.NewClient(newHTTPClient(), cfg.FeedURL)
	incidentRegistry := registry.New()
	manager := track.NewEntityManager(track.Options{
		Source:     feedClient,
		Dispatcher: dispatcher.New(),
		Registry:   incidentRegistry,
		Filter: poll.Filter{
			Home:              geo.Point{Latitude: lat, Longitude: lon},
			RadiusKm:          cfg.RadiusKm,
			IncludeCategories: cfg.IncludeCategories,
			ExcludeCategories: cfg.ExcludeCategories,
			Statewide:         cfg.Statewide,
		},
		Notifier:         notifyService,
		NotifyCategories: cfg.Notifications.Categories,
		ScanInterval:     cfg.ScanInterval.Std(),
		UpdateTimeout:    workerConfig.UpdateTimeout,
		Metrics:          workerMetrics,
	})

	// HTTP surfaces
	metricsServer := startMetricsServer(ctx, logger, workerConfig.MetricsPort, notifyService, incidentRegistry)
	_ = metricsServer

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", workerConfig.HealthPort), logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := healthServer.Start(gctx); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})

	// Immediate first fetch; later fetches come from the schedule.
	g.Go(func() error {
		updateCtx, cancel := context.WithTimeout(gctx, workerConfig.UpdateTimeout)
		defer cancel()
		if err := manager.Update(updateCtx); err != nil {
			logger.Error("initial feed update failed", slog.Any("error", err))
		}
		return nil
	})

	if err := manager.Start(); err != nil {
		logger.Error("failed to start entity manager", slog.Any("error", err))
		os.Exit(1)
	}
	healthServer.SetReady(true)
	logger.Info("worker started")

	<-ctx.Done()
	logger.Info("shutdown signal received")
	healthServer.SetReady(false)
	manager.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := notifyService.Shutdown(shutdownCtx); err != nil {
		logger.Error("notification service shutdown failed", slog.Any("error", err))
	}

	if err := g.Wait(); err != nil {
		logger.Error("worker exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

// buildChannels assembles the enabled notification channels from the YAML
// configuration, validating webhook URLs before use.
func buildChannels(logger *slog.Logger, cfg *config.Config) []notify.Channel {
	var channels []notify.Channel

	slackCfg := notifier.SlackConfig{
		Enabled:    cfg.Notifications.Slack.Enabled,
		WebhookURL: cfg.Notifications.Slack.WebhookURL,
		Timeout:    webhookTimeout,
	}
	if slackCfg.Enabled && !validWebhookURL(slackCfg.WebhookURL, "hooks.slack.com", "/services/") {
		logger.Warn("invalid Slack webhook URL, disabling channel")
		slackCfg.Enabled = false
	}
	if slackCfg.Enabled {
		channels = append(channels, notify.NewSlackChannel(slackCfg))
		logger.Info("Slack channel initialized")
	}

	discordCfg := notifier.DiscordConfig{
		Enabled:    cfg.Notifications.Discord.Enabled,
		WebhookURL: cfg.Notifications.Discord.WebhookURL,
		Timeout:    webhookTimeout,
	}
	if discordCfg.Enabled && !validWebhookURL(discordCfg.WebhookURL, "discord.com", "/api/webhooks/") {
		logger.Warn("invalid Discord webhook URL, disabling channel")
		discordCfg.Enabled = false
	}
	if discordCfg.Enabled {
		channels = append(channels, notify.NewDiscordChannel(discordCfg))
		logger.Info("Discord channel initialized")
	}

	return channels
}

// validWebhookURL checks the webhook URL is HTTPS on the expected host and
// path prefix, so a typo cannot leak incident payloads elsewhere.
func validWebhookURL(raw, host, pathPrefix string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Host == host && strings.HasPrefix(u.Path, pathPrefix)
}

// newHTTPClient creates the feed HTTP client with timeouts, connection
// pooling and TLS 1.2+ enforced.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}
