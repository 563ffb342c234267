package httptransport

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"termcolor/internal/hooks"
	id "termcolor/pkg/domain"
	"termcolor/pkg/platform/httputil"
	"termcolor/pkg/platform/sentinel"
	pstrings "termcolor/pkg/platform/strings"
	"termcolor/pkg/requestcontext"
)

// maxPageSize caps the term ids accepted by the bulk cell endpoint.
const maxPageSize = 500

// Handler exposes the bridge's hooks to the host over HTTP.
type Handler struct {
	bridge *Bridge
	logger *slog.Logger
}

// NewHandler constructs the admin handler.
func NewHandler(bridge *Bridge, logger *slog.Logger) *Handler {
	return &Handler{bridge: bridge, logger: logger}
}

// Register mounts the admin endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/assets", h.HandleAssets)
	r.Route("/admin/taxonomies/{taxonomy}", func(r chi.Router) {
		r.Get("/fields/new", h.HandleCreateFields)
		r.Get("/columns", h.HandleColumns)
		r.Get("/columns/{column}/cells", h.HandleCells)
		r.Get("/terms/{termID}/fields", h.HandleEditFields)
		r.Get("/terms/{termID}/columns/{column}", h.HandleCell)
		r.Post("/terms/{termID}", h.HandleTermSaved)
	})
}

type columnsResponse struct {
	Columns hooks.Columns `json:"columns"`
}

type cellsResponse struct {
	Column string               `json:"column"`
	Cells  map[id.TermID]string `json:"cells"`
}

func taxonomyParam(r *http.Request) id.Taxonomy {
	return id.Taxonomy(chi.URLParam(r, "taxonomy"))
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// HandleCreateFields handles GET /admin/taxonomies/{taxonomy}/fields/new.
func (h *Handler) HandleCreateFields(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taxonomy := taxonomyParam(r)

	var buf bytes.Buffer
	if err := h.bridge.CreateFields(ctx, &buf, taxonomy); err != nil {
		h.logger.ErrorContext(ctx, "failed to render create form fields",
			"request_id", requestcontext.RequestID(ctx),
			"taxonomy", taxonomy,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	writeHTML(w, buf.Bytes())
}

// HandleEditFields handles GET /admin/taxonomies/{taxonomy}/terms/{termID}/fields.
func (h *Handler) HandleEditFields(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	termID, err := id.ParseTermID(chi.URLParam(r, "termID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	term := &hooks.Term{
		ID:       termID,
		Taxonomy: taxonomyParam(r),
		Name:     r.URL.Query().Get("name"),
	}

	var buf bytes.Buffer
	if err := h.bridge.EditFields(ctx, &buf, term); err != nil {
		h.logger.ErrorContext(ctx, "failed to render edit form fields",
			"request_id", requestcontext.RequestID(ctx),
			"taxonomy", term.Taxonomy,
			"term_id", termID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	writeHTML(w, buf.Bytes())
}

// HandleTermSaved handles POST /admin/taxonomies/{taxonomy}/terms/{termID}.
// The host calls it after storing the term, passing the original form post.
// Extensions never report failures to the host, so a well-formed call always
// gets 204.
func (h *Handler) HandleTermSaved(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taxonomy := taxonomyParam(r)
	termID, err := id.ParseTermID(chi.URLParam(r, "termID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		httputil.WriteError(w, fmt.Errorf("parse form: %w: %w", sentinel.ErrInvalidInput, err))
		return
	}
	sub := hooks.NewSubmission(r.PostForm)

	switch event := r.URL.Query().Get("event"); event {
	case "create":
		h.bridge.TermCreated(ctx, taxonomy, termID, sub)
	case "", "edit":
		h.bridge.TermEdited(ctx, taxonomy, termID, sub)
	default:
		httputil.WriteError(w, fmt.Errorf("unknown event %q: %w", event, sentinel.ErrInvalidInput))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleColumns handles GET /admin/taxonomies/{taxonomy}/columns.
func (h *Handler) HandleColumns(w http.ResponseWriter, r *http.Request) {
	cols := h.bridge.Columns(r.Context(), taxonomyParam(r))
	httputil.WriteJSON(w, http.StatusOK, columnsResponse{Columns: cols})
}

// HandleCell handles GET /admin/taxonomies/{taxonomy}/terms/{termID}/columns/{column}.
func (h *Handler) HandleCell(w http.ResponseWriter, r *http.Request) {
	termID, err := id.ParseTermID(chi.URLParam(r, "termID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := h.bridge.Cell(r.Context(), taxonomyParam(r), chi.URLParam(r, "column"), termID)
	writeHTML(w, []byte(out))
}

// HandleCells handles GET /admin/taxonomies/{taxonomy}/columns/{column}/cells?term_ids=1,2,3.
func (h *Handler) HandleCells(w http.ResponseWriter, r *http.Request) {
	raw := pstrings.SplitList(r.URL.Query().Get("term_ids"))
	if len(raw) == 0 {
		httputil.WriteError(w, fmt.Errorf("term_ids is required: %w", sentinel.ErrInvalidInput))
		return
	}
	if len(raw) > maxPageSize {
		httputil.WriteError(w, fmt.Errorf("at most %d term_ids: %w", maxPageSize, sentinel.ErrInvalidInput))
		return
	}
	termIDs := make([]id.TermID, 0, len(raw))
	for _, s := range raw {
		termID, err := id.ParseTermID(s)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		termIDs = append(termIDs, termID)
	}

	column := chi.URLParam(r, "column")
	cells := h.bridge.Cells(r.Context(), taxonomyParam(r), column, termIDs)
	resp := cellsResponse{Column: column, Cells: make(map[id.TermID]string, len(cells))}
	for termID, html := range cells {
		resp.Cells[termID] = string(html)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleAssets handles GET /admin/assets?hook={suffix}&taxonomy={taxonomy}.
func (h *Handler) HandleAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	screen := hooks.Screen{
		HookSuffix: strings.TrimSpace(q.Get("hook")),
		Taxonomy:   id.Taxonomy(strings.TrimSpace(q.Get("taxonomy"))),
	}
	if screen.HookSuffix == "" {
		httputil.WriteError(w, fmt.Errorf("hook is required: %w", sentinel.ErrInvalidInput))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.bridge.Assets(r.Context(), screen))
}
