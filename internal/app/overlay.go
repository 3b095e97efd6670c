package app

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/game"
	"gocv.io/x/gocv"
)

// View is what the overlay shows on top of a frame.
type View struct {
	Snapshot game.Snapshot
	Hand     *detector.HandLandmarks
}

var (
	white     = color.RGBA{255, 255, 255, 0}
	grey      = color.RGBA{200, 200, 200, 0}
	prompt    = color.RGBA{0, 200, 200, 0}
	countdown = color.RGBA{0, 255, 0, 0}
	aiColor   = color.RGBA{100, 255, 100, 0}
	result    = color.RGBA{50, 50, 255, 0}
	bone      = color.RGBA{255, 255, 255, 0}
	joint     = color.RGBA{0, 0, 255, 0}
)

// handConnections are the landmark pairs drawn as the hand skeleton.
var handConnections = [][2]int{
	{detector.Wrist, detector.ThumbCMC}, {detector.ThumbCMC, detector.ThumbMCP},
	{detector.ThumbMCP, detector.ThumbIP}, {detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP}, {detector.IndexMCP, detector.IndexPIP},
	{detector.IndexPIP, detector.IndexDIP}, {detector.IndexDIP, detector.IndexTip},
	{detector.IndexMCP, detector.MiddleMCP}, {detector.MiddleMCP, detector.MiddlePIP},
	{detector.MiddlePIP, detector.MiddleDIP}, {detector.MiddleDIP, detector.MiddleTip},
	{detector.MiddleMCP, detector.RingMCP}, {detector.RingMCP, detector.RingPIP},
	{detector.RingPIP, detector.RingDIP}, {detector.RingDIP, detector.RingTip},
	{detector.RingMCP, detector.PinkyMCP}, {detector.Wrist, detector.PinkyMCP},
	{detector.PinkyMCP, detector.PinkyPIP}, {detector.PinkyPIP, detector.PinkyDIP},
	{detector.PinkyDIP, detector.PinkyTip},
}

// Draw renders the hand skeleton, scores, guide and round state onto frame.
func Draw(frame *gocv.Mat, v View) {
	w, h := frame.Cols(), frame.Rows()
	if v.Hand != nil {
		drawHand(frame, v.Hand, w, h)
	}

	scores := v.Snapshot.Scores
	text(frame, fmt.Sprintf("Player: %d", scores.Player), 10, 30, 0.7, white, 2)
	text(frame, fmt.Sprintf("Ties: %d", scores.Ties), w/2-50, 30, 0.7, white, 2)
	text(frame, fmt.Sprintf("AI: %d", scores.AI), w-100, 30, 0.7, white, 2)

	switch {
	case v.Snapshot.Resolution != nil:
		res := v.Snapshot.Resolution
		text(frame, "Your Move: "+res.Player.String(), 10, 100, 1, white, 2)
		text(frame, "AI's Move: "+res.AI.String(), 10, 150, 1, aiColor, 2)
		text(frame, res.Outcome.Message(), 10, 200, 1.2, result, 3)
	case v.Snapshot.State == game.Countdown:
		text(frame, strconv.Itoa(v.Snapshot.Remaining), w/2-40, h/2, 3, countdown, 3)
		text(frame, "Your Move: "+v.Snapshot.PlayerMove.String(), 10, 100, 1, white, 2)
	default:
		text(frame, "Show your gesture!", 10, 100, 1, prompt, 2)
	}

	text(frame, "Press 'R' to reset", 10, h-80, 0.7, grey, 1)
	text(frame, "Rock: Closed fist | Paper: Open hand | Scissors: Victory sign", 10, h-30, 0.5, grey, 1)
}

func drawHand(frame *gocv.Mat, hand *detector.HandLandmarks, w, h int) {
	pixel := func(i int) image.Point {
		x, y := hand.Points[i].Pixel(w, h)
		return image.Pt(x, y)
	}
	for _, c := range handConnections {
		gocv.Line(frame, pixel(c[0]), pixel(c[1]), bone, 2)
	}
	for i := range hand.Points {
		gocv.Circle(frame, pixel(i), 4, joint, -1)
	}
}

func text(frame *gocv.Mat, s string, x, y int, scale float64, c color.RGBA, thickness int) {
	gocv.PutText(frame, s, image.Pt(x, y), gocv.FontHersheySimplex, scale, c, thickness)
}
