package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/pkg/logger"
	"github.com/ayusman/mudra/pkg/metrics"
)

// HCRHandler serves the hill-climb steering game. Frames arrive unmirrored.
type HCRHandler struct {
	recognizer *gesture.Recognizer
	steering   *game.Steering
	metrics    *metrics.Manager
	events     Publisher
	log        logger.Logger
	enabled    atomic.Bool
}

// NewHCRHandler creates an HCRHandler with steering enabled.
func NewHCRHandler(rec *gesture.Recognizer, steering *game.Steering, m *metrics.Manager, p Publisher) *HCRHandler {
	h := &HCRHandler{
		recognizer: rec,
		steering:   steering,
		metrics:    m,
		events:     publisherOrNop(p),
		log:        logger.Named("api.hcr"),
	}
	h.enabled.Store(true)
	return h
}

// SetEnabled turns key output on or off. Disabling releases held keys.
func (h *HCRHandler) SetEnabled(enabled bool) error {
	h.enabled.Store(enabled)
	if !enabled {
		return h.steering.Release()
	}
	return nil
}

// Enabled reports whether gestures drive the keyboard.
func (h *HCRHandler) Enabled() bool {
	return h.enabled.Load()
}

type gestureRequest struct {
	Image string `json:"image"`
}

type gestureResponse struct {
	Gesture gesture.Gesture `json:"gesture"`
}

// Gesture handles POST /api/hcr/gesture.
func (h *HCRHandler) Gesture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req gestureRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Image == "" {
		writeError(w, http.StatusBadRequest, "No image provided")
		return
	}

	frame, err := capture.DecodeFrame(req.Image)
	if err != nil {
		frame.Close()
		writeError(w, http.StatusBadRequest, "Invalid image data")
		return
	}
	defer frame.Close()

	start := time.Now()
	rec, err := h.recognizer.Recognize(&frame)
	if err != nil {
		h.log.Warn(r.Context(), "recognition failed", logger.Error(err))
	}
	h.metrics.ObserveFrame(GameHCR, rec.Gesture.String(), time.Since(start))

	fired := false
	if h.Enabled() {
		fired, err = h.steering.Apply(rec.Gesture)
		if err != nil {
			h.log.Error(r.Context(), "steering failed", logger.String("gesture", rec.Gesture.String()), logger.Error(err))
		}
		if fired {
			h.metrics.RecordSteering(rec.Gesture.String())
		}
	}

	h.events.Publish(Event{Game: GameHCR, Gesture: rec.Gesture.String(), Fired: fired, At: time.Now()})
	writeJSON(w, http.StatusOK, gestureResponse{Gesture: rec.Gesture})
}
