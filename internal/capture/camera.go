// Package capture reads frames from a webcam and decodes frames posted by clients.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/pkg/logger"
)

var (
	// ErrCameraNotOpen is returned when reading from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrNoFrame is returned when the device delivers no usable frame.
	ErrNoFrame = errors.New("no frame available")
)

// Camera is a frame source for the desktop game.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller closes it.
	ReadFrame() (*gocv.Mat, error)
	IsOpen() bool
}

// CameraConfig selects a capture device and the mode requested from it.
type CameraConfig struct {
	Device int
	Width  int
	Height int
	FPS    int
}

// DefaultCameraConfig requests 640x480 at 30 fps from the first device.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{Device: 0, Width: 640, Height: 480, FPS: 30}
}

// Webcam captures from a local video device.
type Webcam struct {
	config CameraConfig
	log    logger.Logger

	mu      sync.Mutex
	capture *gocv.VideoCapture
	width   int
	height  int
}

// NewWebcam creates a Webcam. Zero fields of config take their defaults.
func NewWebcam(config CameraConfig) *Webcam {
	def := DefaultCameraConfig()
	if config.Width <= 0 || config.Height <= 0 {
		config.Width, config.Height = def.Width, def.Height
	}
	if config.FPS <= 0 {
		config.FPS = def.FPS
	}
	return &Webcam{config: config, log: logger.Named("camera")}
}

// Open starts capture. Opening an open camera is a no-op.
func (c *Webcam) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.config.Device)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.config.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("open camera %d: %w", c.config.Device, ErrCameraNotOpen)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(c.config.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(c.config.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(c.config.FPS))

	// Devices may pick the nearest supported mode.
	c.width = int(vc.Get(gocv.VideoCaptureFrameWidth))
	c.height = int(vc.Get(gocv.VideoCaptureFrameHeight))
	c.capture = vc

	c.log.Info(context.Background(), "camera opened",
		logger.Int("device", c.config.Device),
		logger.Int("width", c.width),
		logger.Int("height", c.height))
	return nil
}

// Close releases the device. Closing a closed camera is a no-op.
func (c *Webcam) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.capture = nil
	return err
}

// ReadFrame implements Camera.
func (c *Webcam) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrNoFrame
	}
	return &mat, nil
}

// IsOpen reports whether the device is capturing.
func (c *Webcam) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}

// Size returns the negotiated frame size, or the requested one before Open.
func (c *Webcam) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capture == nil {
		return c.config.Width, c.config.Height
	}
	return c.width, c.height
}
