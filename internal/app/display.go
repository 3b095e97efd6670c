package app

import "gocv.io/x/gocv"

// Display shows frames and reports key presses.
type Display interface {
	// Show draws frame and returns the pressed key code, or -1.
	Show(frame *gocv.Mat) int
	Close() error
}

// Window is a Display backed by a native OpenCV window.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show implements Display.
func (w *Window) Show(frame *gocv.Mat) int {
	w.win.IMShow(*frame)
	return w.win.WaitKey(1)
}

// Close implements Display.
func (w *Window) Close() error {
	return w.win.Close()
}
