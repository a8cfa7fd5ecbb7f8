package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Sentinel-Gate/appgate/internal/domain/handshake"
	"github.com/Sentinel-Gate/appgate/internal/domain/message"
	"github.com/Sentinel-Gate/appgate/internal/domain/policy"
	"github.com/Sentinel-Gate/appgate/internal/domain/session"
	"github.com/Sentinel-Gate/appgate/internal/port/inbound"
	"github.com/Sentinel-Gate/appgate/internal/port/outbound"
	"github.com/Sentinel-Gate/appgate/internal/telemetry"
)

// LoginBridge starts login handshakes.
type LoginBridge interface {
	Begin(ctx context.Context, returnURL string) (handshake.Outcome, error)
	// Active reports whether handshakeID belongs to the running handshake.
	Active(handshakeID string) bool
}

// GateController decides which view the gate shows. It loads the access
// policy once, probes the session at start and again whenever a login may
// have succeeded, and notifies observers when the view or the probed
// session changes.
//
// Probes may overlap. Each probe is numbered when launched and its result
// is applied only if no later-launched probe has been applied already.
type GateController struct {
	appID    string
	prober   outbound.SessionProber
	policies outbound.PolicyFetcher
	bridge   LoginBridge
	ender    outbound.SessionEnder
	logger   *slog.Logger
	metrics  *telemetry.Metrics
	tracer   trace.Tracer

	mu           sync.Mutex
	started      bool
	policy       policy.Policy
	policyKnown  bool
	session      session.Session
	sessionKnown bool
	// sessionDirty is set when an applied probe saw a different session
	// and cleared by the next recompute.
	sessionDirty bool
	view         policy.View
	launched     uint64
	applied      uint64
	observers    map[uint64]func(inbound.Snapshot)
	nextObserver uint64
}

// GateOption configures a GateController.
type GateOption func(*GateController)

// WithGateLogger sets the logger.
func WithGateLogger(logger *slog.Logger) GateOption {
	return func(g *GateController) {
		g.logger = logger
	}
}

// WithGateMetrics exports the rendered view.
func WithGateMetrics(m *telemetry.Metrics) GateOption {
	return func(g *GateController) {
		g.metrics = m
	}
}

// WithGateTracer wraps probes and policy loads in spans.
func WithGateTracer(t trace.Tracer) GateOption {
	return func(g *GateController) {
		g.tracer = t
	}
}

// WithLoginBridge enables Login.
func WithLoginBridge(b LoginBridge) GateOption {
	return func(g *GateController) {
		g.bridge = b
	}
}

// WithSessionEnder enables Logout.
func WithSessionEnder(e outbound.SessionEnder) GateOption {
	return func(g *GateController) {
		g.ender = e
	}
}

// NewGateController creates a controller for appID.
func NewGateController(appID string, prober outbound.SessionProber, policies outbound.PolicyFetcher, opts ...GateOption) *GateController {
	g := &GateController{
		appID:     appID,
		prober:    prober,
		policies:  policies,
		logger:    slog.Default(),
		tracer:    telemetry.NoopTracer(),
		view:      policy.ViewLoading,
		observers: make(map[uint64]func(inbound.Snapshot)),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.metrics.SetView(policy.ViewLoading)
	return g
}

// Start probes the session and loads the access policy concurrently. The
// view stays loading until both have resolved. The policy is loaded once;
// later calls return the current snapshot.
func (g *GateController) Start(ctx context.Context) inbound.Snapshot {
	g.mu.Lock()
	if g.started {
		g.mu.Unlock()
		return g.Snapshot()
	}
	g.started = true
	g.mu.Unlock()

	ctx, span := g.tracer.Start(ctx, "gate.start", trace.WithAttributes(attribute.String("app.id", g.appID)))
	defer span.End()

	var eg errgroup.Group
	eg.Go(func() error {
		g.probe(ctx)
		return nil
	})
	eg.Go(func() error {
		p := g.policies.FetchAccessPolicy(ctx, g.appID)
		g.mu.Lock()
		g.policy = p
		g.policyKnown = true
		g.mu.Unlock()
		g.logger.Debug("access policy loaded", "mode", p.Mode, "fallback", p.Fallback)
		return nil
	})
	_ = eg.Wait()

	snap := g.recompute()
	span.SetAttributes(attribute.String("gate.view", string(snap.View)))
	return snap
}

// Snapshot returns the current state.
func (g *GateController) Snapshot() inbound.Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *GateController) snapshotLocked() inbound.Snapshot {
	snap := inbound.Snapshot{View: g.view, Session: g.session}
	if g.policyKnown {
		snap.Mode = g.policy.Mode
		snap.PolicyFallback = g.policy.Fallback
	}
	return snap
}

// Login runs one handshake. When the outcome may mean the visitor is now
// signed in (succeeded or abandoned), the session is probed again; the
// access policy is not re-fetched.
func (g *GateController) Login(ctx context.Context, returnURL string) (handshake.Outcome, inbound.Snapshot, error) {
	if g.bridge == nil {
		return handshake.OutcomeFailed, g.Snapshot(), errors.New("login is not configured")
	}

	outcome, err := g.bridge.Begin(ctx, returnURL)
	if err != nil || !outcome.RequiresReprobe() {
		return outcome, g.Snapshot(), err
	}
	return outcome, g.Reprobe(ctx), nil
}

// Reprobe probes the session alone and re-evaluates the view.
func (g *GateController) Reprobe(ctx context.Context) inbound.Snapshot {
	g.probe(ctx)
	return g.recompute()
}

// Logout ends the session and probes again.
func (g *GateController) Logout(ctx context.Context) (inbound.Snapshot, error) {
	if g.ender == nil {
		return g.Snapshot(), errors.New("logout is not configured")
	}
	if err := g.ender.Logout(ctx, g.appID); err != nil {
		return g.Snapshot(), err
	}
	return g.Reprobe(ctx), nil
}

// Watch re-probes the session whenever a success message from origin is
// published on bus, so that a login completed in any window is picked up.
// It returns when ctx is done.
func (g *GateController) Watch(ctx context.Context, bus *message.Bus, origin string) {
	sub := bus.Subscribe(4)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-sub.C:
			if !ok {
				return
			}
			if m.Origin != origin || m.Type != message.TypeAuthSuccess {
				continue
			}
			if g.bridge != nil && g.bridge.Active(m.Handshake) {
				// Login re-probes for its own handshake.
				continue
			}
			g.logger.Debug("login success observed, re-probing session")
			g.Reprobe(ctx)
		}
	}
}

// Subscribe registers fn for view and session changes. The returned func removes it.
func (g *GateController) Subscribe(fn func(inbound.Snapshot)) (unsubscribe func()) {
	g.mu.Lock()
	g.nextObserver++
	id := g.nextObserver
	g.observers[id] = fn
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.observers, id)
			g.mu.Unlock()
		})
	}
}

// probe runs one numbered session probe and applies its result unless a
// later-launched probe was applied first.
func (g *GateController) probe(ctx context.Context) {
	g.mu.Lock()
	g.launched++
	seq := g.launched
	g.mu.Unlock()

	ctx, span := g.tracer.Start(ctx, "gate.probe", trace.WithAttributes(attribute.Int64("probe.seq", int64(seq))))
	defer span.End()

	s := g.prober.ProbeSession(ctx, g.appID)

	g.mu.Lock()
	defer g.mu.Unlock()
	if seq <= g.applied {
		g.logger.Debug("dropping stale session probe", "seq", seq, "applied", g.applied)
		span.SetAttributes(attribute.Bool("probe.stale", true))
		return
	}
	if g.sessionKnown && g.session.Fingerprint() != s.Fingerprint() {
		g.logger.Debug("session changed", "authenticated", s.Authenticated, "billing_status", s.Profile.BillingStatus())
		g.sessionDirty = true
	}
	g.applied = seq
	g.session = s
	g.sessionKnown = true
}

// recompute derives the view and notifies observers when the view or the
// session changed.
func (g *GateController) recompute() inbound.Snapshot {
	g.mu.Lock()
	view := policy.ViewLoading
	if g.policyKnown && g.sessionKnown {
		view = policy.Decide(g.policy.Mode, g.session)
	}
	viewChanged := view != g.view
	changed := viewChanged || g.sessionDirty
	g.view = view
	g.sessionDirty = false
	snap := g.snapshotLocked()

	var observers []func(inbound.Snapshot)
	if changed {
		observers = make([]func(inbound.Snapshot), 0, len(g.observers))
		for _, fn := range g.observers {
			observers = append(observers, fn)
		}
	}
	g.mu.Unlock()

	if viewChanged {
		g.metrics.SetView(view)
		g.logger.Info("gate view changed", "view", view, "mode", snap.Mode)
	}
	if changed {
		for _, fn := range observers {
			fn(snap)
		}
	}
	return snap
}

// Compile-time check that GateController implements the Gate port.
var _ inbound.Gate = (*GateController)(nil)
