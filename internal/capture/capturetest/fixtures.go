// Package capturetest provides synthetic frames for tests.
package capturetest

import (
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
)

// Frame returns a blank BGR frame of the given size. The caller closes it.
func Frame(width, height int) *gocv.Mat {
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	return &mat
}

// Frames returns n blank frames, closed automatically when tb finishes.
func Frames(tb testing.TB, n, width, height int) []*gocv.Mat {
	tb.Helper()
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		frames[i] = Frame(width, height)
	}
	tb.Cleanup(func() {
		for _, f := range frames {
			f.Close()
		}
	})
	return frames
}

// DataURL returns a small frame encoded the way browser clients post it.
func DataURL(tb testing.TB) string {
	tb.Helper()
	mat := Frame(64, 48)
	defer mat.Close()
	url, err := capture.EncodeFrame(*mat)
	if err != nil {
		tb.Fatalf("EncodeFrame() error = %v", err)
	}
	return url
}
