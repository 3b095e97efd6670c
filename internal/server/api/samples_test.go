package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/mudra/internal/dataset"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func newSamplesFixture(t *testing.T) (*SamplesHandler, *store.Store, *detector.MockDetector) {
	s := newTestStore(t)
	d := detector.NewMockDetector()
	d.SetHands([]detector.HandLandmarks{detector.ScissorsLandmarks()})
	return NewSamplesHandler(s, d, nil), s, d
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func samplePayload(t *testing.T, label string) string {
	data, _ := json.Marshal(createSampleRequest{Label: label, Frame: frameURL(t)})
	return string(data)
}

func TestSamplesHandler_Create(t *testing.T) {
	h, s, _ := newSamplesFixture(t)

	rec := serve(h, http.MethodPost, "/api/samples", samplePayload(t, "scissors"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp createSampleResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID == "" || resp.Label != "Scissors" {
		t.Errorf("response = %+v", resp)
	}

	stored, err := s.Samples().GetByID(resp.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(stored.Features) != 63 || stored.Source != SampleSourceAPI {
		t.Errorf("stored sample = %+v", stored)
	}
}

func TestSamplesHandler_CreateErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   func(t *testing.T) string
		noHand bool
		want   int
	}{
		{"invalid json", func(*testing.T) string { return "{" }, false, http.StatusBadRequest},
		{"bad label", func(t *testing.T) string { return samplePayload(t, "Lizard") }, false, http.StatusBadRequest},
		{"bad frame", func(*testing.T) string { return `{"label":"Rock","frame":"xyz"}` }, false, http.StatusBadRequest},
		{"frame not an image", func(*testing.T) string {
			return `{"label":"Rock","frame":"data:image/jpeg;base64,aGVsbG8="}`
		}, false, http.StatusBadRequest},
		{"no hand", func(t *testing.T) string { return samplePayload(t, "Rock") }, true, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, d := newSamplesFixture(t)
			if tt.noHand {
				d.SetHands(nil)
			}

			rec := serve(h, http.MethodPost, "/api/samples", tt.body(t))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if rows, _ := s.Samples().List(""); len(rows) != 0 {
				t.Errorf("stored %d samples on error", len(rows))
			}
		})
	}
}

func TestSamplesHandler_CountsExportDelete(t *testing.T) {
	h, s, _ := newSamplesFixture(t)

	serve(h, http.MethodPost, "/api/samples", samplePayload(t, "Scissors"))
	serve(h, http.MethodPost, "/api/samples", samplePayload(t, "Scissors"))
	serve(h, http.MethodPost, "/api/samples", samplePayload(t, "Rock"))

	rec := serve(h, http.MethodGet, "/api/samples", "")
	var counts countsResponse
	json.NewDecoder(rec.Body).Decode(&counts)
	if counts.Total != 3 || counts.Counts["Scissors"] != 2 || counts.Counts["Rock"] != 1 {
		t.Errorf("counts = %+v", counts)
	}

	rec = serve(h, http.MethodGet, "/api/samples/export", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "text/csv" {
		t.Fatalf("export status = %d, type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("export is not CSV: %v", err)
	}
	if len(records) != 4 || strings.Join(records[0], ",") != strings.Join(dataset.Header(), ",") {
		t.Errorf("export has %d records, header %v", len(records), records[0])
	}

	rec = serve(h, http.MethodDelete, "/api/samples?label=scissors", "")
	var del deleteResponse
	json.NewDecoder(rec.Body).Decode(&del)
	if rec.Code != http.StatusOK || del.Deleted != 2 {
		t.Errorf("delete status = %d, deleted %d", rec.Code, del.Deleted)
	}
	if rows, _ := s.Samples().List(""); len(rows) != 1 {
		t.Errorf("%d samples left, want 1", len(rows))
	}

	if rec := serve(h, http.MethodDelete, "/api/samples", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("delete without label status = %d, want 400", rec.Code)
	}
}

func TestSamplesHandler_Routing(t *testing.T) {
	h, _, _ := newSamplesFixture(t)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodPut, "/api/samples", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/samples/export", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/samples/other", http.StatusNotFound},
	}
	for _, tt := range tests {
		if rec := serve(h, tt.method, tt.path, ""); rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}

func TestSamplesHandler_NoDetector(t *testing.T) {
	h := NewSamplesHandler(newTestStore(t), nil, nil)
	if rec := serve(h, http.MethodPost, "/api/samples", samplePayload(t, "Rock")); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
