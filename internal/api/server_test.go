package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openphosphene/prosthesim/internal/catalog"
	"github.com/openphosphene/prosthesim/internal/implant"
)

func setupTestServer(t *testing.T) (*Server, *catalog.Catalog) {
	t.Helper()

	cat, err := catalog.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	if err := cat.MigrateUp(); err != nil {
		t.Fatalf("failed to migrate test catalog: %v", err)
	}

	return NewServer(cat, nil), cat
}

// seedLayout stores a 3x3 disk grid and returns its record.
func seedLayout(t *testing.T, cat *catalog.Catalog, name string) *catalog.LayoutRecord {
	t.Helper()

	params := implant.GridParams{
		Rows:    3,
		Cols:    3,
		Spacing: implant.UniformSpacing(400),
		Kind:    implant.KindDisk,
		R:       100,
	}
	grid, err := implant.NewElectrodeGrid(params)
	if err != nil {
		t.Fatalf("failed to build seed grid: %v", err)
	}
	rec := catalog.RecordFromParams(name, params)
	if err := cat.InsertLayout(rec, catalog.SnapshotElectrodes(grid)); err != nil {
		t.Fatalf("failed to insert seed layout: %v", err)
	}
	return rec
}

func TestHandleLayouts_List(t *testing.T) {
	server, cat := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/layouts", nil)
	w := httptest.NewRecorder()
	server.handleLayouts(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	var empty []catalog.LayoutRecord
	if err := json.NewDecoder(w.Body).Decode(&empty); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected empty list, got %d layouts", len(empty))
	}

	seedLayout(t, cat, "first")
	seedLayout(t, cat, "second")

	w = httptest.NewRecorder()
	server.handleLayouts(w, httptest.NewRequest(http.MethodGet, "/api/layouts", nil))

	var recs []catalog.LayoutRecord
	if err := json.NewDecoder(w.Body).Decode(&recs); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("Expected 2 layouts, got %d", len(recs))
	}
}

func TestHandleLayouts_Create(t *testing.T) {
	server, cat := setupTestServer(t)

	rec := catalog.LayoutRecord{
		Name:     "remote-3x3",
		Rows:     3,
		Cols:     3,
		SpacingX: 400,
		Uniform:  true,
		Kind:     implant.KindDisk,
		R:        floatPtr(100),
	}
	body, _ := json.Marshal(rec)
	req := httptest.NewRequest(http.MethodPost, "/api/layouts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	server.handleLayouts(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Body: %s", w.Code, w.Body.String())
	}

	var created catalog.LayoutRecord
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if created.LayoutID == "" {
		t.Error("Expected layout ID to be set")
	}
	if created.Name != "remote-3x3" {
		t.Errorf("Expected name 'remote-3x3', got %q", created.Name)
	}
	if created.Tiling != string(implant.RectTiling) {
		t.Errorf("Expected tiling to default to rect, got %q", created.Tiling)
	}

	// The electrode rows should be materialized alongside the layout.
	electrodes, err := cat.ListElectrodes(created.LayoutID)
	if err != nil {
		t.Fatalf("ListElectrodes: %v", err)
	}
	if len(electrodes) != 9 {
		t.Errorf("Expected 9 electrode rows, got %d", len(electrodes))
	}
}

func TestHandleLayouts_Create_MissingName(t *testing.T) {
	server, _ := setupTestServer(t)

	body, _ := json.Marshal(catalog.LayoutRecord{Rows: 2, Cols: 2, SpacingX: 100, Uniform: true})
	req := httptest.NewRequest(http.MethodPost, "/api/layouts", bytes.NewReader(body))
	w := httptest.NewRecorder()

	server.handleLayouts(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestHandleLayouts_Create_InvalidGeometry(t *testing.T) {
	server, _ := setupTestServer(t)

	tests := []struct {
		name string
		rec  catalog.LayoutRecord
	}{
		{"zero rows", catalog.LayoutRecord{Name: "bad", Rows: 0, Cols: 3, SpacingX: 100, Uniform: true}},
		{"unknown kind", catalog.LayoutRecord{Name: "bad", Rows: 2, Cols: 2, SpacingX: 100, Uniform: true, Kind: "hexagon"}},
		{"disk without radius", catalog.LayoutRecord{Name: "bad", Rows: 2, Cols: 2, SpacingX: 100, Uniform: true, Kind: implant.KindDisk}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.rec)
			req := httptest.NewRequest(http.MethodPost, "/api/layouts", bytes.NewReader(body))
			w := httptest.NewRecorder()

			server.handleLayouts(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d. Body: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestHandleLayouts_Get(t *testing.T) {
	server, cat := setupTestServer(t)
	rec := seedLayout(t, cat, "get-test")

	// Lookup by ID and by name should both resolve.
	for _, key := range []string{rec.LayoutID, "get-test"} {
		req := httptest.NewRequest(http.MethodGet, "/api/layouts/"+key, nil)
		w := httptest.NewRecorder()

		server.handleLayouts(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200 for %q, got %d", key, w.Code)
		}

		var detail layoutDetail
		if err := json.NewDecoder(w.Body).Decode(&detail); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if detail.Layout.Name != "get-test" {
			t.Errorf("Expected layout name 'get-test', got %q", detail.Layout.Name)
		}
		if len(detail.Electrodes) != 9 {
			t.Errorf("Expected 9 electrodes, got %d", len(detail.Electrodes))
		}
	}
}

func TestHandleLayouts_Get_NotFound(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/layouts/no-such-layout", nil)
	w := httptest.NewRecorder()

	server.handleLayouts(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestHandleLayouts_Update(t *testing.T) {
	server, cat := setupTestServer(t)
	rec := seedLayout(t, cat, "update-test")

	body := strings.NewReader(`{"description": "updated description"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/layouts/"+rec.LayoutID, body)
	w := httptest.NewRecorder()

	server.handleLayouts(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	var updated catalog.LayoutRecord
	if err := json.NewDecoder(w.Body).Decode(&updated); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if updated.Description != "updated description" {
		t.Errorf("Expected updated description, got %q", updated.Description)
	}
}

func TestHandleLayouts_Update_MissingField(t *testing.T) {
	server, cat := setupTestServer(t)
	rec := seedLayout(t, cat, "update-missing")

	req := httptest.NewRequest(http.MethodPut, "/api/layouts/"+rec.LayoutID, strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	server.handleLayouts(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestHandleLayouts_Delete(t *testing.T) {
	server, cat := setupTestServer(t)
	rec := seedLayout(t, cat, "delete-test")

	req := httptest.NewRequest(http.MethodDelete, "/api/layouts/"+rec.LayoutID, nil)
	w := httptest.NewRecorder()

	server.handleLayouts(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}

	// Verify it's deleted
	w = httptest.NewRecorder()
	server.handleLayouts(w, httptest.NewRequest(http.MethodGet, "/api/layouts/"+rec.LayoutID, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", w.Code)
	}
}

func TestHandleLayouts_Delete_NotFound(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/layouts/no-such-layout", nil)
	w := httptest.NewRecorder()

	server.handleLayouts(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestHandleLayouts_SetElectrode(t *testing.T) {
	server, cat := setupTestServer(t)
	rec := seedLayout(t, cat, "electrode-test")

	url := fmt.Sprintf("/api/layouts/%s/electrodes/B2", rec.LayoutID)
	req := httptest.NewRequest(http.MethodPut, url, strings.NewReader(`{"activated": false}`))
	w := httptest.NewRecorder()

	server.handleLayouts(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}

	electrodes, err := cat.ListElectrodes(rec.LayoutID)
	if err != nil {
		t.Fatalf("ListElectrodes: %v", err)
	}
	for _, e := range electrodes {
		want := e.Name != "B2"
		if e.Activated != want {
			t.Errorf("electrode %s activated = %v, want %v", e.Name, e.Activated, want)
		}
	}
}

func TestHandleLayouts_SetElectrode_NotFound(t *testing.T) {
	server, cat := setupTestServer(t)
	rec := seedLayout(t, cat, "electrode-missing")

	url := fmt.Sprintf("/api/layouts/%s/electrodes/Z9", rec.LayoutID)
	req := httptest.NewRequest(http.MethodPut, url, strings.NewReader(`{"activated": true}`))
	w := httptest.NewRecorder()

	server.handleLayouts(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestHandleLayouts_MethodNotAllowed(t *testing.T) {
	server, _ := setupTestServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPatch, "/api/layouts"},
		{http.MethodPatch, "/api/layouts/some-id"},
		{http.MethodPost, "/api/layouts/some-id/electrodes/A1"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			server.handleLayouts(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected status 405, got %d", w.Code)
			}
		})
	}
}

func TestShowConfig(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	w := httptest.NewRecorder()

	server.showConfig(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var cfg map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&cfg); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if _, ok := cfg["units"]; !ok {
		t.Error("Expected 'units' in config response")
	}
	if _, ok := cfg["colormap"]; !ok {
		t.Error("Expected 'colormap' in config response")
	}
}

func TestShowConfig_MethodNotAllowed(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/config", nil)
	w := httptest.NewRecorder()

	server.showConfig(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestViewLayout(t *testing.T) {
	server, cat := setupTestServer(t)
	rec := seedLayout(t, cat, "view-test")

	req := httptest.NewRequest(http.MethodGet, "/view/"+rec.LayoutID, nil)
	w := httptest.NewRecorder()

	server.viewLayout(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Expected HTML content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "echarts") {
		t.Error("Expected echarts markup in view response")
	}
}

func TestViewLayout_PerElectrodeRadii(t *testing.T) {
	server, cat := setupTestServer(t)

	params := implant.GridParams{
		Rows:    2,
		Cols:    2,
		Spacing: implant.UniformSpacing(400),
		Kind:    implant.KindDisk,
		RList:   []float64{60, 80, 100, 120},
	}
	grid, err := implant.NewElectrodeGrid(params)
	if err != nil {
		t.Fatalf("failed to build seed grid: %v", err)
	}
	rec := catalog.RecordFromParams("rlist-view", params)
	if err := cat.InsertLayout(rec, catalog.SnapshotElectrodes(grid)); err != nil {
		t.Fatalf("failed to insert seed layout: %v", err)
	}

	// The record's scalar radius column is empty here; serving must recover
	// the per-electrode radii from the stored rows.
	req := httptest.NewRequest(http.MethodGet, "/view/"+rec.LayoutID, nil)
	w := httptest.NewRecorder()

	server.viewLayout(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
}

func TestViewLayout_NotFound(t *testing.T) {
	server, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/view/no-such-layout", nil)
	w := httptest.NewRecorder()

	server.viewLayout(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestViewLayout_InvalidUnits(t *testing.T) {
	server, cat := setupTestServer(t)
	rec := seedLayout(t, cat, "view-units")

	req := httptest.NewRequest(http.MethodGet, "/view/"+rec.LayoutID+"?units=furlongs", nil)
	w := httptest.NewRecorder()

	server.viewLayout(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestRenderLayout(t *testing.T) {
	server, cat := setupTestServer(t)
	rec := seedLayout(t, cat, "render-test")

	req := httptest.NewRequest(http.MethodGet, "/render/"+rec.LayoutID+".png", nil)
	w := httptest.NewRecorder()

	server.renderLayout(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png content type, got %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("Expected PNG magic bytes in response")
	}
}

func TestRenderLayout_DefaultsToPNG(t *testing.T) {
	server, cat := setupTestServer(t)
	rec := seedLayout(t, cat, "render-default")

	req := httptest.NewRequest(http.MethodGet, "/render/"+rec.LayoutID, nil)
	w := httptest.NewRecorder()

	server.renderLayout(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png content type, got %q", ct)
	}
}

func TestRenderLayout_UnsupportedFormat(t *testing.T) {
	server, cat := setupTestServer(t)
	rec := seedLayout(t, cat, "render-format")

	req := httptest.NewRequest(http.MethodGet, "/render/"+rec.LayoutID+".gif", nil)
	w := httptest.NewRecorder()

	server.renderLayout(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestWriteJSONError(t *testing.T) {
	server, _ := setupTestServer(t)

	w := httptest.NewRecorder()
	server.writeJSONError(w, http.StatusBadRequest, "test error")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	var errResp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errResp["error"] != "test error" {
		t.Errorf("Expected error message 'test error', got '%s'", errResp["error"])
	}
}

func TestServeMuxRoutes(t *testing.T) {
	server, cat := setupTestServer(t)
	seedLayout(t, cat, "mux-test")
	mux := server.ServeMux()

	tests := []struct {
		path string
		want int
	}{
		{"/", http.StatusOK},
		{"/api/layouts", http.StatusOK},
		{"/api/layouts/mux-test", http.StatusOK},
		{"/api/config", http.StatusOK},
		{"/view/mux-test", http.StatusOK},
		{"/render/mux-test.png", http.StatusOK},
		{"/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.want)
			}
		})
	}
}

// Helper function to create float64 pointers
func floatPtr(f float64) *float64 {
	return &f
}
