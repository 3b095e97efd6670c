package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/dataset"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/features"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/pkg/logger"
	"github.com/ayusman/mudra/pkg/metrics"
)

// SampleSourceAPI marks samples captured through the HTTP API.
const SampleSourceAPI = "api"

// SamplesHandler collects labelled landmark samples from webcam frames.
type SamplesHandler struct {
	store    *store.Store
	detector detector.Detector
	metrics  *metrics.Manager
	log      logger.Logger
}

// NewSamplesHandler creates a new SamplesHandler. d is only needed for POST.
func NewSamplesHandler(s *store.Store, d detector.Detector, m *metrics.Manager) *SamplesHandler {
	return &SamplesHandler{store: s, detector: d, metrics: m, log: logger.Named("api.samples")}
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/samples and /api/samples/export
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/samples")
	path = strings.Trim(path, "/")

	switch {
	case path == "export" && r.Method == http.MethodGet:
		h.export(w, r)
	case path == "export":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	case path != "":
		writeError(w, http.StatusNotFound, "Not found")
	case r.Method == http.MethodGet:
		h.counts(w, r)
	case r.Method == http.MethodPost:
		h.create(w, r)
	case r.Method == http.MethodDelete:
		h.delete(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createSampleRequest struct {
	Label string `json:"label"`
	Frame string `json:"frame"`
}

type createSampleResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type countsResponse struct {
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

type deleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// counts handles GET /api/samples
func (h *SamplesHandler) counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Samples().CountByLabel()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count samples")
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	writeJSON(w, http.StatusOK, countsResponse{Counts: counts, Total: total})
}

// create handles POST /api/samples. The frame is mirrored like the
// prediction endpoint so stored samples match what the model sees in play.
func (h *SamplesHandler) create(w http.ResponseWriter, r *http.Request) {
	if h.detector == nil {
		writeError(w, http.StatusServiceUnavailable, "Hand detection is not available")
		return
	}

	var req createSampleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	label, err := gesture.ParseMove(req.Label)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Label must be Rock, Paper or Scissors")
		return
	}

	frame, err := capture.DecodeFrame(req.Frame)
	if err != nil {
		frame.Close()
		writeError(w, http.StatusBadRequest, "Invalid frame data")
		return
	}
	defer frame.Close()
	capture.Mirror(&frame)

	hands, err := h.detector.Detect(&frame)
	if err != nil {
		h.log.Error(r.Context(), "hand detection failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "Hand detection failed")
		return
	}

	v, err := features.Extractor{Mode: features.ModeLandmarks}.Extract(hands)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "No hand detected")
		return
	}

	sample := &store.Sample{
		ID:       uuid.NewString(),
		Label:    label.String(),
		Source:   SampleSourceAPI,
		Features: v,
	}
	if err := h.store.Samples().Create(sample); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save sample")
		return
	}
	h.metrics.RecordSample(sample.Label)

	writeJSON(w, http.StatusCreated, createSampleResponse{ID: sample.ID, Label: sample.Label})
}

// export handles GET /api/samples/export
func (h *SamplesHandler) export(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.Samples().List("")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}
	samples, err := dataset.FromStore(rows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Stored samples are invalid")
		return
	}

	var buf bytes.Buffer
	if err := dataset.WriteCSV(&buf, samples); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode samples")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="landmarks.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// delete handles DELETE /api/samples?label=Rock
func (h *SamplesHandler) delete(w http.ResponseWriter, r *http.Request) {
	label, err := gesture.ParseMove(r.URL.Query().Get("label"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Label must be Rock, Paper or Scissors")
		return
	}

	n, err := h.store.Samples().DeleteByLabel(label.String())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete samples")
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: n})
}
