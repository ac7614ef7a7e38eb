// AngelaMos | 2026
// handler.go

package deeplink

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/soundridge/identity-gateway/internal/config"
	"github.com/soundridge/identity-gateway/internal/core"
	"github.com/soundridge/identity-gateway/internal/provider"
)

type Outcome string

const (
	OutcomeNavigated  Outcome = "navigated"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeIncomplete Outcome = "incomplete"
	OutcomeFailed     Outcome = "failed"
)

// Result is what a single URL handling settled on: at most one
// navigation, at most one user-facing message.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Route   string  `json:"route,omitempty"`
	Message string  `json:"message,omitempty"`
}

type SessionEstablisher interface {
	Establish(
		ctx context.Context,
		accessToken, refreshToken string,
	) (*provider.User, error)
}

type Navigator interface {
	Navigate(route string)
}

type BrowserCloser interface {
	CloseInAppBrowser() error
}

type Notifier interface {
	Notify(message string)
}

// URLSource is the OS-level bridge: the URL the process was launched
// with, plus a live feed of warm-resume URLs.
type URLSource interface {
	ColdStartURL(ctx context.Context) (string, error)
	Listen(ctx context.Context, fn func(rawURL string)) error
}

// Handler turns app-opened-with-URL events into either a completed
// sign-in, a generic navigation, or one clear user-facing message.
// Cold start and warm resume both funnel through HandleURL, which is
// idempotent per URL.
type Handler struct {
	cfg      config.DeepLinkConfig
	routes   config.RoutesConfig
	sessions SessionEstablisher
	markers  Markers
	nav      Navigator
	browser  BrowserCloser
	notifier Notifier
	log      *RingLog
	logger   *slog.Logger
}

type HandlerConfig struct {
	DeepLink config.DeepLinkConfig
	Routes   config.RoutesConfig
	Sessions SessionEstablisher
	Markers  Markers
	Nav      Navigator
	Browser  BrowserCloser
	Notifier Notifier
	Log      *RingLog
	Logger   *slog.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	log := cfg.Log
	if log == nil {
		log = NewRingLog(cfg.DeepLink.LogCapacity)
	}
	return &Handler{
		cfg:      cfg.DeepLink,
		routes:   cfg.Routes,
		sessions: cfg.Sessions,
		markers:  cfg.Markers,
		nav:      cfg.Nav,
		browser:  cfg.Browser,
		notifier: cfg.Notifier,
		log:      log,
		logger:   logger,
	}
}

func (h *Handler) Log() *RingLog {
	return h.log
}

// Start drains the cold-start URL and attaches the live listener. Hook
// registration failures are logged and recorded, never raised: they
// happen outside any user-initiated request.
func (h *Handler) Start(ctx context.Context, source URLSource) {
	coldURL, err := source.ColdStartURL(ctx)
	if err != nil {
		h.logger.Warn("cold-start url check failed", "error", err)
		h.log.Append("cold_start_error", err.Error())
	} else if coldURL != "" {
		h.HandleURL(ctx, coldURL)
	}

	if err := source.Listen(ctx, func(rawURL string) {
		h.HandleURL(ctx, rawURL)
	}); err != nil {
		h.logger.Warn("url listener registration failed", "error", err)
		h.log.Append("listener_error", err.Error())
	}
}

// HandleURL is the single entry point for every app-opened-with-URL
// event. Every failure is local and user-facing; nothing escapes as an
// error to the caller's event loop.
func (h *Handler) HandleURL(ctx context.Context, rawURL string) Result {
	h.log.Append("url_received", rawURL)

	if !h.isAuthCallback(rawURL) {
		route := h.genericRoute(rawURL)
		h.log.Append("generic_navigation", route)
		h.navigate(route)
		return Result{Outcome: OutcomeNavigated, Route: route}
	}

	first, err := h.markers.MarkProcessed(ctx, core.HashToken(rawURL))
	if err != nil {
		h.logger.Warn("idempotency check failed, continuing", "error", err)
	}
	if !first {
		h.log.Append("duplicate_callback", rawURL)
		return Result{Outcome: OutcomeDuplicate}
	}

	tokens := ExtractTokens(rawURL)
	if !tokens.Complete() {
		h.log.Append("incomplete_callback", rawURL)
		result := h.fail("authentication incomplete, please try signing in again")
		result.Outcome = OutcomeIncomplete
		return result
	}

	if _, err := h.sessions.Establish(
		ctx,
		tokens.AccessToken,
		tokens.RefreshToken,
	); err != nil {
		h.log.Append("establish_failed", err.Error())
		return h.fail("failed to complete sign-in")
	}

	if h.browser != nil {
		if err := h.browser.CloseInAppBrowser(); err != nil {
			h.logger.Warn("close in-app browser failed", "error", err)
			h.log.Append("browser_close_failed", err.Error())
		}
	}

	h.log.Append("sign_in_complete", "")
	h.navigate(h.routes.AuthLanding)
	return Result{Outcome: OutcomeNavigated, Route: h.routes.AuthLanding}
}

func (h *Handler) isAuthCallback(rawURL string) bool {
	parsed, err := url.Parse(strippedFragment(rawURL))
	if err != nil {
		return false
	}

	if parsed.Scheme == h.cfg.CallbackScheme {
		host := parsed.Host
		if host == "" {
			host = strings.Trim(parsed.Opaque, "/")
		}
		return host == h.cfg.CallbackHost ||
			strings.Trim(parsed.Path, "/") == h.cfg.CallbackHost
	}

	// https web callbacks carry the callback host as the last path
	// segment, e.g. https://app.example.com/auth-callback#...
	if parsed.Scheme == "http" || parsed.Scheme == "https" {
		return strings.HasSuffix(
			strings.TrimRight(parsed.Path, "/"),
			"/"+h.cfg.CallbackHost,
		)
	}

	return false
}

// genericRoute maps a non-callback deep link to an in-app route.
func (h *Handler) genericRoute(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return h.routes.MobileLanding
	}

	path := parsed.Path
	if path == "" && parsed.Opaque != "" {
		path = "/" + strings.Trim(parsed.Opaque, "/")
	}
	if parsed.Scheme == h.cfg.CallbackScheme && parsed.Host != "" {
		path = "/" + parsed.Host + path
	}

	if path == "" || path == "/" {
		return h.routes.MobileLanding
	}
	return path
}

func (h *Handler) fail(message string) Result {
	if h.notifier != nil {
		h.notifier.Notify(message)
	}
	return Result{Outcome: OutcomeFailed, Message: message}
}

func (h *Handler) navigate(route string) {
	if h.nav != nil {
		h.nav.Navigate(route)
	}
}

func strippedFragment(rawURL string) string {
	if idx := strings.Index(rawURL, "#"); idx >= 0 {
		return rawURL[:idx]
	}
	return rawURL
}
