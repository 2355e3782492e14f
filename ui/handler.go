package ui

import (
	"net/http"
	"net/url"

	"github.com/modelgate/sessions"
	"github.com/modelgate/sessions/compaction"
	"github.com/modelgate/sessions/types"
)

// Handler returns an http.Handler serving the session inspector.
//
// Usage:
//
//	http.Handle("/debug/sessions/", http.StripPrefix("/debug/sessions",
//		ui.Handler(manager, &ui.Config{BasePath: "/debug/sessions"})))
func Handler(manager *sessions.Manager, cfg *Config) http.Handler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.applyDefaults()

	// Validate configuration (panic on invalid config as this is a programmer error)
	if err := cfg.validate(); err != nil {
		panic("ui: invalid configuration: " + err.Error())
	}

	renderer, err := newRenderer(cfg)
	if err != nil {
		panic("ui: " + err.Error())
	}

	h := &handler{
		manager:  manager,
		config:   cfg,
		renderer: renderer,
		logger:   cfg.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.index)
	mux.HandleFunc("GET /session", h.session)
	if !cfg.ReadOnly {
		mux.HandleFunc("POST /session/reset", h.reset)
		mux.HandleFunc("POST /session/compact", h.compact)
		mux.HandleFunc("POST /session/evict", h.evict)
	}
	return mux
}

type handler struct {
	manager  *sessions.Manager
	config   *Config
	renderer *renderer
	logger   Logger
}

// indexPage is the data for the session list.
type indexPage struct {
	Sessions []sessions.CachedSession
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	page := indexPage{Sessions: h.manager.CachedSessions()}
	if err := h.renderer.render(w, "index.html", "Sessions", page); err != nil {
		h.logger.Error("failed to render session list", "error", err)
	}
}

// sessionPage is the data for the session detail view.
type sessionPage struct {
	Provider       string
	Model          string
	Info           sessions.SessionInfo
	Breakdown      *sessions.ContextBreakdown
	Messages       []types.Message
	LastCompaction *compaction.Result
}

func (h *handler) session(w http.ResponseWriter, r *http.Request) {
	provider, model := r.URL.Query().Get("provider"), r.URL.Query().Get("model")
	if provider == "" || model == "" {
		http.Error(w, "provider and model are required", http.StatusBadRequest)
		return
	}

	info, ok := h.manager.SessionInfo(provider, model, 0)
	if !ok {
		http.NotFound(w, r)
		return
	}

	page := sessionPage{
		Provider: provider,
		Model:    model,
		Info:     info,
	}
	page.Breakdown, _ = h.manager.ContextBreakdown(provider, model, 0)
	page.Messages, _ = h.manager.Messages(provider, model)
	page.LastCompaction, _ = h.manager.LastCompaction(provider, model)

	if err := h.renderer.render(w, "session.html", provider+"/"+model, page); err != nil {
		h.logger.Error("failed to render session detail", "error", err)
	}
}

func (h *handler) reset(w http.ResponseWriter, r *http.Request) {
	provider, model := r.FormValue("provider"), r.FormValue("model")
	result := h.manager.Reset(provider, model)
	h.logger.Info("session reset requested",
		"provider", provider, "model", model, "reset", result.Reset)
	h.redirectToSession(w, r, provider, model)
}

func (h *handler) compact(w http.ResponseWriter, r *http.Request) {
	provider, model := r.FormValue("provider"), r.FormValue("model")
	result := h.manager.Compact(r.Context(), provider, model, 0)
	h.logger.Info("compaction requested",
		"provider", provider, "model", model, "compacted", result.Compacted)
	h.redirectToSession(w, r, provider, model)
}

func (h *handler) evict(w http.ResponseWriter, r *http.Request) {
	provider, model := r.FormValue("provider"), r.FormValue("model")
	removed := h.manager.Evict(provider, model)
	h.logger.Info("eviction requested",
		"provider", provider, "model", model, "removed", removed)
	http.Redirect(w, r, h.config.BasePath+"/", http.StatusSeeOther)
}

func (h *handler) redirectToSession(w http.ResponseWriter, r *http.Request, provider, model string) {
	query := url.Values{"provider": {provider}, "model": {model}}
	http.Redirect(w, r,
		h.config.BasePath+"/session?"+query.Encode(),
		http.StatusSeeOther)
}
