// Package api serves the layout catalog over HTTP: JSON CRUD for stored
// layouts plus rendered previews of their electrode geometry.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/openphosphene/prosthesim/internal/catalog"
	"github.com/openphosphene/prosthesim/internal/config"
	"github.com/openphosphene/prosthesim/internal/implant"
	"github.com/openphosphene/prosthesim/internal/render"
	"github.com/openphosphene/prosthesim/internal/units"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	cat *catalog.Catalog
	cfg *config.ToolkitConfig
}

func NewServer(cat *catalog.Catalog, cfg *config.ToolkitConfig) *Server {
	if cfg == nil {
		cfg = config.EmptyToolkitConfig()
	}
	return &Server{
		cat: cat,
		cfg: cfg,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400 && statusCode < 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/layouts", s.handleLayouts)
	mux.HandleFunc("/api/layouts/", s.handleLayouts)
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/view/", s.viewLayout)
	mux.HandleFunc("/render/", s.renderLayout)
	mux.HandleFunc("/", s.homeHandler)
	return mux
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	io.WriteString(w, "prosthesim layout server\n\n"+
		"  GET    /api/layouts                        list stored layouts\n"+
		"  POST   /api/layouts                        store a new layout\n"+
		"  GET    /api/layouts/{id}                   layout detail with electrodes\n"+
		"  PUT    /api/layouts/{id}                   update layout description\n"+
		"  DELETE /api/layouts/{id}                   delete a layout\n"+
		"  PUT    /api/layouts/{id}/electrodes/{name} set electrode activation\n"+
		"  GET    /api/config                         effective render settings\n"+
		"  GET    /view/{id}                          interactive HTML preview\n"+
		"  GET    /render/{id}.png                    static figure (png, svg, pdf)\n")
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// handleLayouts routes /api/layouts and sub-paths by method and path shape.
func (s *Server) handleLayouts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/layouts"), "/")
	var parts []string
	if rest != "" {
		parts = strings.Split(rest, "/")
	}

	switch {
	case len(parts) == 0 && r.Method == http.MethodGet:
		s.listLayouts(w, r)
	case len(parts) == 0 && r.Method == http.MethodPost:
		s.createLayout(w, r)
	case len(parts) == 1 && r.Method == http.MethodGet:
		s.getLayout(w, r, parts[0])
	case len(parts) == 1 && r.Method == http.MethodPut:
		s.updateLayout(w, r, parts[0])
	case len(parts) == 1 && r.Method == http.MethodDelete:
		s.deleteLayout(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "electrodes" && r.Method == http.MethodPut:
		s.setElectrode(w, r, parts[0], parts[2])
	case len(parts) <= 1 || (len(parts) == 3 && parts[1] == "electrodes"):
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		s.writeJSONError(w, http.StatusNotFound, "Not found")
	}
}

// lookupLayout resolves a path segment as a layout ID first and falls back
// to the layout name.
func (s *Server) lookupLayout(idOrName string) (*catalog.LayoutRecord, error) {
	rec, err := s.cat.GetLayout(idOrName)
	if errors.Is(err, catalog.ErrNotFound) {
		return s.cat.GetLayoutByName(idOrName)
	}
	return rec, err
}

// buildLayout reconstructs the electrode grid for a record from its stored
// electrode rows, restoring per-electrode overrides and activation flags.
func (s *Server) buildLayout(rec *catalog.LayoutRecord) (*implant.ElectrodeGrid, error) {
	electrodes, err := s.cat.ListElectrodes(rec.LayoutID)
	if err != nil {
		return nil, err
	}
	return rec.BuildWith(electrodes)
}

func (s *Server) listLayouts(w http.ResponseWriter, r *http.Request) {
	recs, err := s.cat.ListLayouts()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to list layouts: %v", err))
		return
	}
	if recs == nil {
		recs = []*catalog.LayoutRecord{}
	}
	if err := json.NewEncoder(w).Encode(recs); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write layouts")
		return
	}
}

func (s *Server) createLayout(w http.ResponseWriter, r *http.Request) {
	var rec catalog.LayoutRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if rec.Name == "" {
		s.writeJSONError(w, http.StatusBadRequest, "Missing required field 'name'")
		return
	}

	// Round-trip through grid construction so invalid geometry is rejected
	// up front and omitted fields pick up their defaults.
	params := rec.Params()
	grid, err := implant.NewElectrodeGrid(params)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid layout: %v", err))
		return
	}
	stored := catalog.RecordFromParams(rec.Name, params)
	stored.Description = rec.Description

	if err := s.cat.InsertLayout(stored, catalog.SnapshotElectrodes(grid)); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to store layout: %v", err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(stored); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write layout")
		return
	}
}

// layoutDetail is the GET /api/layouts/{id} response shape.
type layoutDetail struct {
	Layout     *catalog.LayoutRecord     `json:"layout"`
	Electrodes []catalog.ElectrodeRecord `json:"electrodes"`
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := s.lookupLayout(id)
	if errors.Is(err, catalog.ErrNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "Layout not found")
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to load layout: %v", err))
		return
	}

	electrodes, err := s.cat.ListElectrodes(rec.LayoutID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to load electrodes: %v", err))
		return
	}
	if electrodes == nil {
		electrodes = []catalog.ElectrodeRecord{}
	}

	if err := json.NewEncoder(w).Encode(layoutDetail{Layout: rec, Electrodes: electrodes}); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write layout")
		return
	}
}

func (s *Server) updateLayout(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Description == nil {
		s.writeJSONError(w, http.StatusBadRequest, "Missing required field 'description'")
		return
	}

	rec, err := s.lookupLayout(id)
	if errors.Is(err, catalog.ErrNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "Layout not found")
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to load layout: %v", err))
		return
	}

	if err := s.cat.UpdateLayoutDescription(rec.LayoutID, *req.Description); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to update layout: %v", err))
		return
	}

	updated, err := s.cat.GetLayout(rec.LayoutID)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to load layout: %v", err))
		return
	}
	if err := json.NewEncoder(w).Encode(updated); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write layout")
		return
	}
}

func (s *Server) deleteLayout(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := s.lookupLayout(id)
	if errors.Is(err, catalog.ErrNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "Layout not found")
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to load layout: %v", err))
		return
	}

	if err := s.cat.DeleteLayout(rec.LayoutID); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to delete layout: %v", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setElectrode(w http.ResponseWriter, r *http.Request, id, name string) {
	var req struct {
		Activated *bool `json:"activated"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Activated == nil {
		s.writeJSONError(w, http.StatusBadRequest, "Missing required field 'activated'")
		return
	}

	rec, err := s.lookupLayout(id)
	if errors.Is(err, catalog.ErrNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "Layout not found")
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to load layout: %v", err))
		return
	}

	err = s.cat.SetElectrodeActivation(rec.LayoutID, name, *req.Activated)
	if errors.Is(err, catalog.ErrNotFound) {
		s.writeJSONError(w, http.StatusNotFound, "Electrode not found")
		return
	}
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to update electrode: %v", err))
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"layout_id": rec.LayoutID,
		"electrode": name,
		"activated": *req.Activated,
	})
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	cfg := map[string]interface{}{
		"units":            s.cfg.GetDisplayUnits(),
		"colormap":         s.cfg.GetColormap(),
		"colormap_floor":   s.cfg.GetColormapFloor(),
		"figure_width_px":  s.cfg.GetFigureWidthPx(),
		"figure_height_px": s.cfg.GetFigureHeightPx(),
		"glyph_scale":      s.cfg.GetGlyphScale(),
		"annotate":         s.cfg.GetAnnotate(),
	}

	if err := json.NewEncoder(w).Encode(cfg); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, "Failed to write config")
		return
	}
}

// renderOptions builds render options from the server config plus the
// request's units, colormap and annotate query overrides.
func (s *Server) renderOptions(r *http.Request, title string) (render.Options, error) {
	o := render.FromConfig(s.cfg)
	o.Title = title

	q := r.URL.Query()
	if u := q.Get("units"); u != "" {
		if !units.IsValid(u) {
			return o, fmt.Errorf("invalid units %q (valid: %s)", u, units.GetValidUnitsString())
		}
		o.Units = u
	}
	if cm := q.Get("colormap"); cm != "" {
		o.Colormap = cm
	}
	if a := q.Get("annotate"); a != "" {
		annotate, err := strconv.ParseBool(a)
		if err != nil {
			return o, fmt.Errorf("invalid 'annotate' parameter %q", a)
		}
		o.Annotate = annotate
	}
	return o, nil
}

func (s *Server) viewLayout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/view"), "/")
	if id == "" {
		http.Error(w, "layout id required", http.StatusBadRequest)
		return
	}

	rec, err := s.lookupLayout(id)
	if errors.Is(err, catalog.ErrNotFound) {
		http.Error(w, "Layout not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to load layout: %v", err), http.StatusInternalServerError)
		return
	}

	grid, err := s.buildLayout(rec)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to rebuild layout: %v", err), http.StatusInternalServerError)
		return
	}

	o, err := s.renderOptions(r, rec.Name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := render.WriteHTML(&buf, grid.Array(), nil, o); err != nil {
		http.Error(w, fmt.Sprintf("Failed to render layout: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

var figureContentTypes = map[string]string{
	"png": "image/png",
	"svg": "image/svg+xml",
	"pdf": "application/pdf",
}

func (s *Server) renderLayout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file := strings.Trim(strings.TrimPrefix(r.URL.Path, "/render"), "/")
	if file == "" {
		http.Error(w, "layout id required", http.StatusBadRequest)
		return
	}

	ext := path.Ext(file)
	id := strings.TrimSuffix(file, ext)
	format := strings.TrimPrefix(ext, ".")
	if format == "" {
		format = "png"
	}
	contentType, ok := figureContentTypes[format]
	if !ok {
		http.Error(w, fmt.Sprintf("unsupported format %q (use png, svg or pdf)", format), http.StatusBadRequest)
		return
	}

	rec, err := s.lookupLayout(id)
	if errors.Is(err, catalog.ErrNotFound) {
		http.Error(w, "Layout not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to load layout: %v", err), http.StatusInternalServerError)
		return
	}

	grid, err := s.buildLayout(rec)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to rebuild layout: %v", err), http.StatusInternalServerError)
		return
	}

	o, err := s.renderOptions(r, rec.Name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := render.WriteFigure(&buf, grid.Array(), nil, format, o); err != nil {
		http.Error(w, fmt.Sprintf("Failed to render figure: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(buf.Bytes())
}
