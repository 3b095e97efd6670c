package capture

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

// ErrBadFrame is returned for missing or undecodable image payloads.
var ErrBadFrame = errors.New("invalid image data")

// DecodeFrame decodes a base64 image, with or without a data URL prefix such
// as "data:image/jpeg;base64,". The caller closes the returned Mat, even on error.
func DecodeFrame(payload string) (gocv.Mat, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return gocv.NewMat(), fmt.Errorf("%w: no image provided", ErrBadFrame)
	}
	if strings.HasPrefix(payload, "data:") {
		i := strings.IndexByte(payload, ',')
		if i < 0 {
			return gocv.NewMat(), fmt.Errorf("%w: malformed data URL", ErrBadFrame)
		}
		payload = payload[i+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrBadFrame, err)
	}

	mat, err := gocv.IMDecode(raw, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), fmt.Errorf("%w: not an image", ErrBadFrame)
	}
	return mat, nil
}

// EncodeFrame encodes a frame as a JPEG data URL.
func EncodeFrame(frame gocv.Mat) (string, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return "", fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.GetBytes()), nil
}

// Mirror flips a frame horizontally in place.
func Mirror(frame *gocv.Mat) {
	gocv.Flip(*frame, frame, 1)
}
