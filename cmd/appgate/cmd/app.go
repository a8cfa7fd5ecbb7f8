package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	pkgbrowser "github.com/pkg/browser"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Sentinel-Gate/appgate/internal/adapter/inbound/callback"
	"github.com/Sentinel-Gate/appgate/internal/adapter/outbound/backend"
	"github.com/Sentinel-Gate/appgate/internal/adapter/outbound/browser"
	"github.com/Sentinel-Gate/appgate/internal/adapter/outbound/state"
	"github.com/Sentinel-Gate/appgate/internal/config"
	"github.com/Sentinel-Gate/appgate/internal/domain/message"
	"github.com/Sentinel-Gate/appgate/internal/service"
	"github.com/Sentinel-Gate/appgate/internal/telemetry"
	"github.com/Sentinel-Gate/appgate/internal/ui"
)

// app holds every wired component for one command invocation.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	registry *prometheus.Registry
	metrics  *telemetry.Metrics
	tracing  *telemetry.Tracing

	prefs    *state.FileStore
	client   *backend.Client
	bus      *message.Bus
	opener   *browser.Opener
	callback *callback.Server
	bridge   *service.AuthBridge
	gate     *service.GateController
	payments *service.PaymentGate
	themes   *service.ThemeService
	render   *ui.Renderer

	bg     errgroup.Group
	stopBg context.CancelFunc
}

// newApp loads the configuration and wires the gate.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Debug("loaded config", "file", configFile)
	}

	a := &app{cfg: cfg, logger: logger, bus: message.NewBus()}

	a.registry = prometheus.NewRegistry()
	a.metrics = telemetry.NewMetrics(a.registry)
	a.tracing, err = telemetry.NewTracing(cfg.Telemetry.TraceStdout, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	tracer := a.tracing.Tracer()

	a.prefs = state.NewFileStore(cfg.PreferencesPath, logger)
	token, err := a.prefs.LoadSessionToken(cfg.AppID)
	if err != nil {
		logger.Warn("failed to load saved session, continuing without it", "path", cfg.PreferencesPath, "error", err)
	}

	baseURL := cfg.ResolveBaseURL()
	a.client = backend.NewClient(baseURL,
		backend.WithTimeout(cfg.BackendTimeout()),
		backend.WithLogger(logger),
		backend.WithMetrics(a.metrics),
		backend.WithTracer(tracer),
		backend.WithSessionToken(token),
	)
	logger.Debug("backend configured", "base_url", baseURL, "app_id", cfg.AppID)

	a.themes = service.NewThemeService(a.prefs, ui.SystemPrefersDark, logger)
	a.render = ui.NewRenderer(cmd.OutOrStdout(), ui.WithDark(a.themes.IsDark()))

	a.opener = browser.NewOpener(
		browser.WithLogger(logger),
		browser.WithOpenFunc(func(u string) error {
			a.render.Opening(u)
			return pkgbrowser.OpenURL(u)
		}),
	)

	a.callback = callback.NewServer(a.bus,
		callback.WithAddr(cfg.Callback.Addr),
		callback.WithLogger(logger),
		callback.WithMetrics(a.metrics, a.registry),
		callback.WithClosureRecorder(a.opener),
		callback.WithHealthChecker(callback.NewHealthChecker(a.bus, Version)),
	)

	creds := &credentials{client: a.client, prefs: a.prefs, appID: cfg.AppID, logger: logger}

	poll, successSettle, abandonSettle := cfg.AuthDurations()
	a.bridge = service.NewAuthBridge(service.BridgeConfig{
		AppID:         cfg.AppID,
		BaseURL:       baseURL,
		Mode:          service.BridgeMode(cfg.Auth.Mode),
		PopupHosts:    cfg.Auth.PopupHosts,
		HostingURL:    cfg.Auth.HostingURL,
		PollInterval:  poll,
		SuccessSettle: successSettle,
		AbandonSettle: abandonSettle,
	}, a.bus, a.callback, a.opener,
		service.WithBridgeLogger(logger),
		service.WithBridgeMetrics(a.metrics),
		service.WithBridgeTracer(tracer),
		service.WithCredentialSink(creds),
		service.WithNavigator(a.opener),
	)

	a.gate = service.NewGateController(cfg.AppID, a.client, a.client,
		service.WithGateLogger(logger),
		service.WithGateMetrics(a.metrics),
		service.WithGateTracer(tracer),
		service.WithLoginBridge(a.bridge),
		service.WithSessionEnder(creds),
	)

	a.payments = service.NewPaymentGate(cfg.AppID, baseURL, a.client, a.opener, logger)

	return a, nil
}

// startCallback binds the callback server and serves it in the
// background. With watch set, logins reported to the callback server are
// also picked up outside a handshake.
func (a *app) startCallback(ctx context.Context, watch bool) error {
	if err := a.callback.Listen(); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	a.stopBg = cancel

	a.bg.Go(func() error {
		return a.callback.Start(ctx)
	})
	if watch {
		a.bg.Go(func() error {
			a.gate.Watch(ctx, a.bus, a.callback.Origin())
			return nil
		})
	}
	a.logger.Debug("callback server started", "origin", a.callback.Origin(), "watch", watch)
	return nil
}

// close stops background work and flushes traces.
func (a *app) close() {
	if a.stopBg != nil {
		a.stopBg()
		if err := a.bg.Wait(); err != nil {
			a.logger.Warn("callback server stopped with error", "error", err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tracing.Shutdown(ctx); err != nil {
		a.logger.Debug("trace shutdown failed", "error", err)
	}
}

// returnURL is where the visitor lands after checkout or redirect login.
func (a *app) returnURL() string {
	if a.cfg.Auth.HostingURL != "" {
		return a.cfg.Auth.HostingURL
	}
	return a.cfg.ResolveBaseURL()
}

// credentials keeps the backend client's session token and the saved
// preferences in step.
type credentials struct {
	client *backend.Client
	prefs  *state.FileStore
	appID  string
	logger *slog.Logger
}

// SetSessionToken installs and saves a token handed over by the login window.
func (c *credentials) SetSessionToken(token string) {
	c.client.SetSessionToken(token)
	if err := c.prefs.SaveSessionToken(c.appID, token); err != nil {
		c.logger.Warn("failed to save session", "error", err)
	}
}

// Logout ends the session on the backend and forgets the saved token.
func (c *credentials) Logout(ctx context.Context, appID string) error {
	if err := c.client.Logout(ctx, appID); err != nil {
		return err
	}
	if err := c.prefs.SaveSessionToken(appID, ""); err != nil {
		c.logger.Warn("failed to clear saved session", "error", err)
	}
	return nil
}

// signalContext returns a context cancelled by the first interrupt. A
// second interrupt kills the process.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}

// newLogger builds the stderr logger. DevMode always forces debug.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := parseLogLevel(cfg.LogLevel)
	if cfg.DevMode {
		level = slog.LevelDebug
	}
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// parseLogLevel converts a level name to an slog.Level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// outputFormat validates an -o flag value.
func outputFormat(v string) (string, error) {
	switch v {
	case "", "text":
		return "text", nil
	case "json", "yaml":
		return v, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", v)
	}
}
