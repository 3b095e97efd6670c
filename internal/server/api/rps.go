package api

import (
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/pkg/logger"
	"github.com/ayusman/mudra/pkg/metrics"
)

// RPSHandler serves the browser rock-paper-scissors game.
type RPSHandler struct {
	recognizer *gesture.Recognizer
	session    *game.Session
	metrics    *metrics.Manager
	events     Publisher
	log        logger.Logger
}

// NewRPSHandler creates an RPSHandler. m and p may be nil.
func NewRPSHandler(rec *gesture.Recognizer, session *game.Session, m *metrics.Manager, p Publisher) *RPSHandler {
	return &RPSHandler{
		recognizer: rec,
		session:    session,
		metrics:    m,
		events:     publisherOrNop(p),
		log:        logger.Named("api.rps"),
	}
}

type predictRequest struct {
	Frame string `json:"frame"`
}

type predictResponse struct {
	Gesture    gesture.Gesture    `json:"gesture"`
	State      game.State         `json:"state"`
	Confidence int                `json:"confidence"`
	Countdown  *int               `json:"countdown,omitempty"`
	PlayerMove gesture.Gesture    `json:"player_move,omitempty"`
	AIMove     gesture.Gesture    `json:"ai_move,omitempty"`
	Result     string             `json:"result,omitempty"`
	Scores     game.ScoreBoard    `json:"scores"`
	Landmarks  []detector.Point3D `json:"landmarks,omitempty"`
}

type resetResponse struct {
	Status string          `json:"status"`
	Scores game.ScoreBoard `json:"scores"`
}

// Predict handles POST /api/rps/predict. The frame is mirrored before
// detection so the player sees their own hand the way a mirror shows it.
func (h *RPSHandler) Predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req predictRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Frame == "" {
		writeError(w, http.StatusBadRequest, "No frame provided")
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

	start := time.Now()
	rec, err := h.recognizer.Recognize(&frame)
	if err != nil {
		h.log.Warn(r.Context(), "recognition failed", logger.Error(err))
	}
	h.metrics.ObserveFrame(GameRPS, rec.Gesture.String(), time.Since(start))

	snap := h.session.Observe(rec.Gesture)
	resp := toPredictResponse(snap, rec.Hand)

	event := Event{
		Game:    GameRPS,
		Gesture: rec.Gesture.String(),
		State:   snap.State.String(),
		Scores:  &resp.Scores,
		At:      time.Now(),
	}
	if res := snap.Resolution; res != nil {
		h.metrics.RecordRound(res.Outcome.String())
		event.Result = res.Outcome.String()
		event.AIMove = res.AI.String()
	}
	h.events.Publish(event)

	writeJSON(w, http.StatusOK, resp)
}

// Reset handles POST /api/rps/reset.
func (h *RPSHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.session.Reset()
	h.log.Info(r.Context(), "scores reset")
	h.events.Publish(Event{Game: GameRPS, State: snap.State.String(), Scores: &snap.Scores, At: time.Now()})

	writeJSON(w, http.StatusOK, resetResponse{Status: "reset", Scores: snap.Scores})
}

func toPredictResponse(snap game.Snapshot, hand *detector.HandLandmarks) predictResponse {
	resp := predictResponse{
		Gesture:    snap.Gesture,
		State:      snap.State,
		Confidence: snap.Confidence,
		PlayerMove: snap.PlayerMove,
		Scores:     snap.Scores,
	}
	if snap.State == game.Countdown {
		n := snap.Remaining
		resp.Countdown = &n
	}
	if res := snap.Resolution; res != nil {
		resp.AIMove = res.AI
		resp.Result = res.Outcome.Message()
	}
	if hand != nil {
		resp.Landmarks = hand.Points[:]
	}
	return resp
}
