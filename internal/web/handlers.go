package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/linecap/internal/core"
	"github.com/JonMunkholm/linecap/internal/logging"
	"github.com/JonMunkholm/linecap/internal/sink"
	"github.com/JonMunkholm/linecap/internal/source"
	"github.com/JonMunkholm/linecap/internal/web/templates"
)

// ExtractResponse is the JSON body of a successful extraction.
type ExtractResponse struct {
	RunID      string      `json:"runId"`
	Layout     string      `json:"layout"`
	Partial    bool        `json:"partial"`
	Warning    string      `json:"warning,omitempty"`
	Stats      core.Stats  `json:"stats"`
	DurationMs int64       `json:"durationMs"`
	Records    *core.Store `json:"records"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string                 `json:"status"`
	Layouts int                    `json:"layouts"`
	Runs    *core.RunLimiterStatus `json:"runs,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var opts []templates.LayoutOption
	for _, l := range core.Layouts() {
		opts = append(opts, templates.LayoutOption{Key: l.Key, Label: l.Label})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index(opts, s.cfg.Extract.Layout).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Layouts: core.LayoutCount()}
	if l := s.service.Limiter(); l != nil {
		st := l.Status()
		resp.Runs = &st
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Layouts())
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	layout, err := core.LookupLayout(chi.URLParam(r, "layout"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

// handleExtract runs one extraction over the uploaded file and returns the
// records as JSON, or as a workbook when format=xlsx.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	res, err := s.extract(w, r)
	if err != nil {
		s.respondRunError(w, r, err, runIDOf(res))
		return
	}

	if r.URL.Query().Get("format") == "xlsx" {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Layout.Key+".xlsx"))
		if err := sink.EncodeXLSX(w, res.Layout, res.Store); err != nil {
			logging.FromContext(r.Context()).Error("xlsx encode error", "error", err, "run_id", res.RunID)
		}
		return
	}

	resp := ExtractResponse{
		RunID:      res.RunID,
		Layout:     res.Layout.Key,
		Partial:    res.Partial,
		Stats:      res.Stats,
		DurationMs: res.Duration.Milliseconds(),
		Records:    res.Store,
	}
	if res.Partial {
		resp.Warning = "the document could not be read completely; records from later tables may be missing"
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePreview renders the first records of an extraction as an HTMX
// fragment. Nothing is written to the configured outputs.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	res, err := s.run(w, r)
	if err != nil && !s.acceptPartial(r, res) {
		s.respondRunError(w, r, err, runIDOf(res))
		return
	}

	n := s.cfg.Extract.PreviewRows
	if n == 0 {
		n = -1
	}
	data := templates.PreviewData{
		RunID:   res.RunID,
		Layout:  res.Layout,
		Records: res.Store.Preview(n),
		Total:   res.Store.Len(),
		Stats:   res.Stats,
		Partial: res.Partial,
	}
	if err != nil {
		data.Warning = core.FormatUserError(err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Preview(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render preview", "error", err)
	}
}

// extract runs the upload and writes the result to the configured output.
// A partial result counts as success only when partial results are allowed.
func (s *Server) extract(w http.ResponseWriter, r *http.Request) (*core.Result, error) {
	res, err := s.run(w, r)
	if err != nil && !s.acceptPartial(r, res) {
		return res, err
	}

	if s.output != nil {
		if werr := s.output.Write(r.Context(), res); werr != nil {
			return res, werr
		}
	}
	return res, nil
}

// run spools the upload, resolves the layout and source options, and runs
// the extraction under the configured timeout.
func (s *Server) run(w http.ResponseWriter, r *http.Request) (*core.Result, error) {
	up, err := s.receiveUpload(w, r)
	if err != nil {
		return nil, err
	}
	defer up.Remove()

	key := chi.URLParam(r, "layout")
	if key == "" {
		key = r.FormValue("layout")
	}
	if key == "" {
		key = s.cfg.Extract.Layout
	}
	layout, err := core.LookupLayout(key)
	if err != nil {
		return nil, err
	}

	opts := source.OptionsFor(layout)
	if err := opts.Override(s.cfg.Extract.Pages, s.cfg.Extract.TableArea, s.cfg.Extract.CSVEncoding); err != nil {
		return nil, err
	}
	if err := opts.Override(r.FormValue("pages"), r.FormValue("area"), r.FormValue("encoding")); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}

	src, err := source.Open(up.Path, opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.runTimeout())
	defer cancel()
	ctx = core.ContextWithLogger(ctx, logging.FromContext(ctx))

	logging.WithFields(ctx, "layout", layout.Key, "file", up.Filename, "bytes", up.Size).
		Info("extraction requested", "pages", opts.Pages)

	res, err := s.service.Run(ctx, src, layout)
	if s.metrics != nil {
		s.metrics.ObserveRun(layout.Key, res, err)
	}
	return res, err
}

// acceptPartial reports whether a partial result may be returned. The
// allow_partial form value overrides the configured default.
func (s *Server) acceptPartial(r *http.Request, res *core.Result) bool {
	if res == nil || !res.Partial {
		return false
	}
	if v := r.FormValue("allow_partial"); v != "" {
		allow, err := strconv.ParseBool(v)
		return err == nil && allow
	}
	return s.cfg.Extract.AllowPartial
}

func runIDOf(res *core.Result) string {
	if res == nil {
		return ""
	}
	return res.RunID
}
