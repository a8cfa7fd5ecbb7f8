package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sentinel-Gate/appgate/internal/ctxkey"
	"github.com/Sentinel-Gate/appgate/internal/domain/handshake"
	"github.com/Sentinel-Gate/appgate/internal/domain/links"
	"github.com/Sentinel-Gate/appgate/internal/domain/message"
	"github.com/Sentinel-Gate/appgate/internal/port/outbound"
	"github.com/Sentinel-Gate/appgate/internal/telemetry"
)

var (
	// ErrHandshakeInProgress is returned by Begin while another handshake is pending.
	ErrHandshakeInProgress = errors.New("login handshake already in progress")

	// ErrPopupBlocked is returned when the login window could not be opened.
	ErrPopupBlocked = errors.New("login popup blocked")
)

// BridgeMode selects how the login window is presented.
type BridgeMode string

const (
	// BridgeModePopup opens a secondary window and waits for its message.
	BridgeModePopup BridgeMode = "popup"
	// BridgeModeRedirect navigates the whole host to the provider.
	BridgeModeRedirect BridgeMode = "redirect"
	// BridgeModeAuto picks popup when the hosting URL matches a popup host.
	BridgeModeAuto BridgeMode = "auto"
)

// Defaults for BridgeConfig.
const (
	DefaultPollInterval  = time.Second
	DefaultSuccessSettle = 100 * time.Millisecond
	DefaultAbandonSettle = time.Second
	DefaultWindowName    = "googleLogin"
)

// BridgeConfig configures an AuthBridge.
type BridgeConfig struct {
	AppID   string
	BaseURL string

	Mode       BridgeMode
	PopupHosts []string
	HostingURL string

	// PollInterval is how often the login window is checked for closure.
	PollInterval time.Duration
	// SuccessSettle is waited after a success message before reporting it.
	SuccessSettle time.Duration
	// AbandonSettle is waited after the window closed without a message, so
	// that a session cookie set by the provider is in place before re-probing.
	AbandonSettle time.Duration
}

func (c *BridgeConfig) applyDefaults() {
	if c.Mode == "" {
		c.Mode = BridgeModePopup
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.SuccessSettle < 0 {
		c.SuccessSettle = 0
	}
	if c.AbandonSettle < 0 {
		c.AbandonSettle = 0
	}
}

// ResolveBridgeMode turns auto into popup or redirect. Popup is chosen when
// hostingURL contains one of popupHosts.
func ResolveBridgeMode(mode BridgeMode, hostingURL string, popupHosts []string) BridgeMode {
	if mode != BridgeModeAuto {
		return mode
	}
	for _, h := range popupHosts {
		if h != "" && strings.Contains(hostingURL, h) {
			return BridgeModePopup
		}
	}
	return BridgeModeRedirect
}

// CallbackEndpoint is where the login window reports back.
type CallbackEndpoint interface {
	Origin() string
	CallbackURL(handshakeID string) string
}

// AuthBridge runs cross-window login handshakes. At most one handshake is
// pending per bridge.
type AuthBridge struct {
	cfg         BridgeConfig
	bus         *message.Bus
	callback    CallbackEndpoint
	windows     outbound.WindowOpener
	navigator   outbound.Navigator
	credentials outbound.CredentialSink
	logger      *slog.Logger
	metrics     *telemetry.Metrics
	tracer      trace.Tracer
	newID       func() string

	mu     sync.Mutex
	active *handshake.Handshake
}

// BridgeOption configures an AuthBridge.
type BridgeOption func(*AuthBridge)

// WithBridgeLogger sets the logger.
func WithBridgeLogger(logger *slog.Logger) BridgeOption {
	return func(b *AuthBridge) {
		b.logger = logger
	}
}

// WithBridgeMetrics records handshake outcomes.
func WithBridgeMetrics(m *telemetry.Metrics) BridgeOption {
	return func(b *AuthBridge) {
		b.metrics = m
	}
}

// WithBridgeTracer wraps each handshake in a span.
func WithBridgeTracer(t trace.Tracer) BridgeOption {
	return func(b *AuthBridge) {
		b.tracer = t
	}
}

// WithCredentialSink receives session tokens carried by success messages.
func WithCredentialSink(sink outbound.CredentialSink) BridgeOption {
	return func(b *AuthBridge) {
		b.credentials = sink
	}
}

// WithNavigator sets the redirect-mode navigator.
func WithNavigator(n outbound.Navigator) BridgeOption {
	return func(b *AuthBridge) {
		b.navigator = n
	}
}

// WithHandshakeIDs replaces the handshake id generator.
func WithHandshakeIDs(fn func() string) BridgeOption {
	return func(b *AuthBridge) {
		b.newID = fn
	}
}

// NewAuthBridge creates an AuthBridge. Messages are read from bus; the login
// window reports back to callback.
func NewAuthBridge(cfg BridgeConfig, bus *message.Bus, callback CallbackEndpoint, windows outbound.WindowOpener, opts ...BridgeOption) *AuthBridge {
	cfg.applyDefaults()
	b := &AuthBridge{
		cfg:      cfg,
		bus:      bus,
		callback: callback,
		windows:  windows,
		logger:   slog.Default(),
		tracer:   telemetry.NoopTracer(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Mode returns the effective presentation mode.
func (b *AuthBridge) Mode() BridgeMode {
	return ResolveBridgeMode(b.cfg.Mode, b.cfg.HostingURL, b.cfg.PopupHosts)
}

// Pending reports whether a handshake is in progress.
func (b *AuthBridge) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active != nil
}

// Active reports whether handshakeID belongs to the handshake in progress.
// A handshake stays active until Begin returns, settle delay included.
func (b *AuthBridge) Active(handshakeID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active != nil && handshakeID != "" && b.active.ID == handshakeID
}

// Begin starts a login. In popup mode it blocks until the handshake reaches
// a terminal outcome; returnURL is unused. In redirect mode it sends the
// browser to the provider with returnURL as the redirect target and returns
// OutcomeRedirected.
//
// Cancelling ctx tears the handshake down and returns OutcomeCancelled with
// the context error. If ctx is cancelled during a settle delay, the outcome
// already reached is returned together with the context error.
func (b *AuthBridge) Begin(ctx context.Context, returnURL string) (handshake.Outcome, error) {
	if b.Mode() == BridgeModeRedirect {
		return b.redirect(ctx, returnURL)
	}

	b.mu.Lock()
	if b.active != nil {
		b.mu.Unlock()
		b.logger.Debug("ignoring login request while a handshake is pending")
		return handshake.OutcomePending, ErrHandshakeInProgress
	}
	hs := handshake.New(b.newID())
	b.active = hs
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.active = nil
		b.mu.Unlock()
	}()

	ctx, span := b.tracer.Start(ctx, "auth.handshake", trace.WithAttributes(
		attribute.String("handshake.id", hs.ID),
		attribute.String("handshake.mode", string(BridgeModePopup)),
	))
	defer span.End()

	outcome, err := b.runPopup(ctx, hs)
	span.SetAttributes(attribute.String("handshake.outcome", string(outcome)))
	b.metrics.ObserveHandshake(string(outcome))
	b.logger.Info("login handshake finished", "handshake_id", hs.ID, "outcome", outcome)
	return outcome, err
}

func (b *AuthBridge) runPopup(ctx context.Context, hs *handshake.Handshake) (handshake.Outcome, error) {
	logger := b.logger.With("handshake_id", hs.ID)
	ctx = ctxkey.WithLogger(ctx, logger)

	// Subscribe before the window exists so no message can be missed.
	sub := b.bus.Subscribe(8)
	hs.Hold(sub.Close)

	hostOrigin := b.callback.Origin()
	authURL := links.AuthURL(b.cfg.BaseURL, b.cfg.AppID, b.callback.CallbackURL(hs.ID))

	win, err := b.windows.Open(ctx, outbound.OpenRequest{
		URL:         authURL,
		Name:        DefaultWindowName,
		HandshakeID: hs.ID,
		Width:       500,
		Height:      600,
	})
	if err != nil {
		hs.Finish(handshake.OutcomeFailed)
		logger.Warn("login window could not be opened", "error", err)
		return handshake.OutcomeFailed, fmt.Errorf("%w: %w", ErrPopupBlocked, err)
	}
	hs.Hold(func() {
		if err := win.Close(); err != nil {
			logger.Debug("closing login window failed", "error", err)
		}
	})

	ticker := time.NewTicker(b.cfg.PollInterval)
	hs.Hold(ticker.Stop)

	for {
		select {
		case <-ctx.Done():
			hs.Finish(handshake.OutcomeCancelled)
			return handshake.OutcomeCancelled, ctx.Err()

		case m, ok := <-sub.C:
			if !ok {
				hs.Finish(handshake.OutcomeCancelled)
				return handshake.OutcomeCancelled, errors.New("message subscription closed")
			}
			if m.Origin != hostOrigin {
				logger.Debug("discarding message from foreign origin", "origin", m.Origin, "type", m.Type)
				continue
			}
			if m.Handshake != hs.ID {
				logger.Debug("discarding message for another handshake", "other_handshake_id", m.Handshake)
				continue
			}

			switch m.Type {
			case message.TypeAuthSuccess:
				if m.SessionToken != "" && b.credentials != nil {
					b.credentials.SetSessionToken(m.SessionToken)
				}
				hs.Finish(handshake.OutcomeSucceeded)
				return handshake.OutcomeSucceeded, sleepCtx(ctx, b.cfg.SuccessSettle)
			case message.TypeAuthError:
				hs.Finish(handshake.OutcomeFailed)
				return handshake.OutcomeFailed, nil
			default:
				logger.Debug("ignoring message of unknown type", "type", m.Type)
			}

		case <-ticker.C:
			if !win.Closed() {
				continue
			}
			logger.Debug("login window closed without a message")
			hs.Finish(handshake.OutcomeAbandoned)
			return handshake.OutcomeAbandoned, sleepCtx(ctx, b.cfg.AbandonSettle)
		}
	}
}

func (b *AuthBridge) redirect(ctx context.Context, returnURL string) (handshake.Outcome, error) {
	if b.navigator == nil {
		return handshake.OutcomeFailed, errors.New("redirect login requires a navigator")
	}
	authURL := links.AuthURL(b.cfg.BaseURL, b.cfg.AppID, returnURL)
	if err := b.navigator.Navigate(ctx, authURL); err != nil {
		b.metrics.ObserveHandshake(string(handshake.OutcomeFailed))
		return handshake.OutcomeFailed, fmt.Errorf("redirect to login: %w", err)
	}
	b.metrics.ObserveHandshake(string(handshake.OutcomeRedirected))
	b.logger.Info("redirected to login", "return_url", returnURL)
	return handshake.OutcomeRedirected, nil
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
