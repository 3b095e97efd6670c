package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/features"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/pkg/logger"
	"github.com/ayusman/mudra/pkg/metrics"
)

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// Result summarizes a collection run.
type Result struct {
	Samples []*store.Sample
	// Skipped counts images that could not be read or held no hand.
	Skipped int
	// Ignored lists directories whose name is not a move.
	Ignored []string
}

// Counts returns the number of collected samples per label.
func (r Result) Counts() map[string]int {
	counts := make(map[string]int)
	for _, s := range r.Samples {
		counts[s.Label]++
	}
	return counts
}

// Collector extracts landmark rows from a folder tree laid out as
// <root>/<Label>/<image>.
type Collector struct {
	detector detector.Detector
	metrics  *metrics.Manager
	log      logger.Logger
}

// NewCollector creates a Collector. metrics may be nil.
func NewCollector(d detector.Detector, m *metrics.Manager) *Collector {
	return &Collector{
		detector: d,
		metrics:  m,
		log:      logger.Named("collect"),
	}
}

// Collect walks root and returns one sample per image with a detected hand.
func (c *Collector) Collect(ctx context.Context, root string) (Result, error) {
	var res Result

	entries, err := os.ReadDir(root)
	if err != nil {
		return res, fmt.Errorf("read dataset dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		label, err := gesture.ParseMove(entry.Name())
		if err != nil {
			c.log.Warn(ctx, "ignoring directory", logger.String("dir", entry.Name()))
			res.Ignored = append(res.Ignored, entry.Name())
			continue
		}

		files, err := imageFiles(filepath.Join(root, entry.Name()))
		if err != nil {
			return res, err
		}

		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return res, err
			}

			v, ok := c.extract(ctx, path)
			if !ok {
				res.Skipped++
				continue
			}
			res.Samples = append(res.Samples, &store.Sample{
				Label:    string(label),
				Source:   path,
				Features: v,
			})
			c.metrics.RecordSample(string(label))
		}
	}

	c.log.Info(ctx, "collection finished",
		logger.Int("samples", len(res.Samples)),
		logger.Int("skipped", res.Skipped))
	return res, nil
}

func (c *Collector) extract(ctx context.Context, path string) (features.Vector, bool) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		c.log.Debug(ctx, "unreadable image", logger.String("path", path))
		return nil, false
	}

	hands, err := c.detector.Detect(&img)
	if err != nil {
		c.log.Warn(ctx, "detection failed", logger.String("path", path), logger.Error(err))
		return nil, false
	}

	v, err := features.Extractor{Mode: features.ModeLandmarks}.Extract(hands)
	if err != nil {
		c.log.Debug(ctx, "no hand", logger.String("path", path))
		return nil, false
	}
	return v, true
}

func imageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
