package web

import (
	"net/http"
	"strconv"

	"github.com/ablekit/relay/internal/config"
	"github.com/ablekit/relay/internal/errors"
	"github.com/ablekit/relay/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	engine   *ops.Engine
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /reports: recent handoff reports, newest first.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.List(ops.ListInput{
		Limit: parseIntParam(r, "limit", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Handoff Reports",
			Version: h.renderer.version,
			Nav:     "reports",
		},
		Items: result.Items,
		Limit: result.Limit,
	})
}

// HandleDetail handles GET /reports/{id}: view a single handoff report.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("report ID is required"))
		return
	}

	result, err := h.engine.Fetch(ops.FetchInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   "Report " + shortID(id),
			Version: h.renderer.version,
			Nav:     "reports",
		},
		Report: result.Report,
	})
}

// HandlePrompt handles GET /reports/{id}/prompt: render the onboarding
// prompt for a stored report.
func (h *Handlers) HandlePrompt(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("report ID is required"))
		return
	}

	result, err := h.engine.Synthesize(r.Context(), ops.SynthesizeInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "prompt", PromptPageData{
		PageData: PageData{
			Title:   "Onboarding Prompt " + shortID(id),
			Version: h.renderer.version,
			Nav:     "reports",
		},
		ReportID:     id,
		RenderedHTML: renderMarkdown(result.Prompt),
		PromptText:   result.Prompt,
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
