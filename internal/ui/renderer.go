package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/Sentinel-Gate/appgate/internal/domain/policy"
	"github.com/Sentinel-Gate/appgate/internal/domain/pricing"
	"github.com/Sentinel-Gate/appgate/internal/port/inbound"
)

type palette struct {
	title  *color.Color
	text   *color.Color
	muted  *color.Color
	accent *color.Color
	ok     *color.Color
	bad    *color.Color
	action *color.Color
}

func newPalette(dark, enabled bool) palette {
	p := palette{
		muted:  color.New(color.FgHiBlack),
		accent: color.New(color.FgHiMagenta, color.Bold),
		ok:     color.New(color.FgGreen),
		bad:    color.New(color.FgRed, color.Bold),
		action: color.New(color.FgHiBlue, color.Bold, color.Underline),
	}
	if dark {
		p.title = color.New(color.FgHiWhite, color.Bold)
		p.text = color.New(color.FgWhite)
	} else {
		p.title = color.New(color.FgBlack, color.Bold)
		p.text = color.New(color.FgBlack)
	}
	for _, c := range []*color.Color{p.title, p.text, p.muted, p.accent, p.ok, p.bad, p.action} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Renderer writes gate screens to a terminal.
type Renderer struct {
	w   io.Writer
	pal palette
}

// RendererOption configures a Renderer.
type RendererOption func(*rendererConfig)

type rendererConfig struct {
	color bool
	dark  bool
}

// WithColor forces color on or off.
func WithColor(enabled bool) RendererOption {
	return func(c *rendererConfig) {
		c.color = enabled
	}
}

// WithDark selects the dark or light palette.
func WithDark(dark bool) RendererOption {
	return func(c *rendererConfig) {
		c.dark = dark
	}
}

// NewRenderer creates a Renderer writing to w. Color follows
// ShouldUseColor(w) unless WithColor is given. The palette is dark by
// default.
func NewRenderer(w io.Writer, opts ...RendererOption) *Renderer {
	cfg := rendererConfig{color: ShouldUseColor(w), dark: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Renderer{w: w, pal: newPalette(cfg.dark, cfg.color)}
}

func (r *Renderer) line(c *color.Color, format string, args ...any) {
	_, _ = fmt.Fprintln(r.w, c.Sprintf(format, args...))
}

func (r *Renderer) blank() {
	_, _ = fmt.Fprintln(r.w)
}

// Loading renders the loading screen.
func (r *Renderer) Loading() {
	r.line(r.pal.muted, "Loading...")
}

// Content renders the gated content.
func (r *Renderer) Content() {
	r.line(r.pal.title, "What would you like to build today?")
	r.line(r.pal.text, "Start typing to build your app.")
}

// Login renders the login screen. hint tells the visitor how to start the
// login, e.g. a command to run.
func (r *Renderer) Login(hint string) {
	r.line(r.pal.title, "Build Something Amazing")
	r.line(r.pal.text, "Transform your ideas into reality with our innovative platform designed to help you launch and scale your next big venture.")
	r.blank()
	r.line(r.pal.action, "Log in with Google")
	if hint != "" {
		r.line(r.pal.muted, "%s", hint)
	}
}

// Opening tells the visitor a page is opening in the browser.
func (r *Renderer) Opening(u string) {
	r.line(r.pal.text, "Continue in your browser.")
	r.line(r.pal.muted, "If no window opened, visit: %s", u)
}

// Error renders an error screen.
func (r *Renderer) Error(err error) {
	r.line(r.pal.bad, "Error")
	r.line(r.pal.text, "%s", capitalize(err.Error()))
	r.blank()
	r.line(r.pal.action, "Try Again")
}

// Payment renders the payment screen: one card for a single price, a plan
// grid for several.
func (r *Renderer) Payment(prices []pricing.Price) {
	switch len(prices) {
	case 0:
		r.line(r.pal.muted, "No pricing options available.")
	case 1:
		r.singlePrice(prices[0])
	default:
		r.priceGrid(prices)
	}
	r.blank()
	r.line(r.pal.muted, "← Log in with a different account")
}

func (r *Renderer) singlePrice(p pricing.Price) {
	r.line(r.pal.title, "%s", p.DisplayName())
	r.line(r.pal.text, "Unlock all features")
	r.blank()
	r.line(r.pal.accent, "%s", p.Amount())
	r.line(r.pal.muted, "%s", pricing.RecurrenceText(p))
	r.blank()
	r.line(r.pal.action, "Get Access")
	r.line(r.pal.muted, "  price id: %s", p.ID)
}

func (r *Renderer) priceGrid(prices []pricing.Price) {
	r.line(r.pal.title, "Choose Your Plan")
	r.line(r.pal.text, "Select the perfect plan for your needs. All plans include full access to premium features.")
	for _, p := range prices {
		r.blank()
		r.line(r.pal.title, "%s", p.DisplayName())
		r.line(r.pal.muted, "%s", pricing.RecurrenceText(p))
		if p.Recurring != nil {
			r.line(r.pal.accent, "%s %s", p.Amount(), r.pal.muted.Sprintf("per %s", p.Recurring.Interval))
		} else {
			r.line(r.pal.accent, "%s", p.Amount())
		}
		last := "Cancel anytime"
		if p.Type == pricing.PriceTypeOneTime {
			last = "Lifetime access"
		}
		for _, f := range []string{"Full access to all features", "Priority support", last} {
			r.line(r.pal.text, "%s %s", r.pal.ok.Sprint("✓"), f)
		}
		r.line(r.pal.action, "Get Started")
		r.line(r.pal.muted, "  price id: %s", p.ID)
	}
	r.blank()
	r.line(r.pal.muted, "Secure payment processing • Your data is protected")
}

// Subscription renders the plan catalogue with the selected plan marked.
func (r *Renderer) Subscription(plans []pricing.Plan, selected pricing.Plan) {
	r.line(r.pal.title, "Subscription Required")
	r.line(r.pal.text, "Choose a subscription plan to access this content.")
	for _, p := range plans {
		r.blank()
		marker := "  "
		if p.ID == selected.ID {
			marker = r.pal.accent.Sprint("▸ ")
		}
		name := r.pal.title.Sprint(p.Name)
		if p.Popular {
			name += " " + r.pal.accent.Sprint("Most Popular")
		}
		_, _ = fmt.Fprintln(r.w, marker+name)
		r.line(r.pal.accent, "  %s%s", p.Price, r.pal.muted.Sprintf("/%s", p.Period))
		for _, f := range p.Features {
			r.line(r.pal.text, "  %s %s", r.pal.ok.Sprint("✓"), f)
		}
	}
	r.blank()
	r.line(r.pal.muted, "Selected Plan")
	r.line(r.pal.accent, "%s - %s/%s", selected.Name, selected.Price, selected.Period)
	r.line(r.pal.action, "Subscribe to %s Plan", selected.Name)
}

// Status renders a one-screen summary of a snapshot.
func (r *Renderer) Status(snap inbound.Snapshot) {
	mode := string(snap.Mode)
	if snap.PolicyFallback {
		mode += " (fallback)"
	}
	r.line(r.pal.text, "view:          %s", r.pal.accent.Sprint(string(snap.View)))
	r.line(r.pal.text, "access policy: %s", mode)
	if !snap.Session.Authenticated {
		r.line(r.pal.text, "session:       %s", r.pal.muted.Sprint("not signed in"))
		return
	}
	who := snap.Session.Profile.Email()
	if who == "" {
		who = snap.Session.Profile.Name()
	}
	if who == "" {
		who = "signed in"
	}
	r.line(r.pal.text, "session:       %s", who)
	billing := string(snap.Session.Profile.BillingStatus())
	if billing == "" {
		billing = "none"
	}
	r.line(r.pal.text, "billing:       %s", billing)
}

// View renders the screen for views that need no extra data.
func (r *Renderer) View(v policy.View) {
	switch v {
	case policy.ViewLoading:
		r.Loading()
	case policy.ViewContent:
		r.Content()
	case policy.ViewLogin:
		r.Login("")
	default:
		r.line(r.pal.muted, "%s", string(v))
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
