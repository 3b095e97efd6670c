// Package dataset reads and writes labelled landmark tables and builds them
// from folders of hand images.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/features"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// LabelColumn is the name of the final CSV column.
const LabelColumn = "label"

// Header returns the CSV header: x0,y0,z0,...,x20,y20,z20,label.
func Header() []string {
	cols := make([]string, 0, features.CoordCount+1)
	for i := 0; i < detector.NumLandmarks; i++ {
		for _, axis := range []string{"x", "y", "z"} {
			cols = append(cols, axis+strconv.Itoa(i))
		}
	}
	return append(cols, LabelColumn)
}

// WriteCSV writes samples with a header row.
func WriteCSV(w io.Writer, samples []gesture.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}

	row := make([]string, features.CoordCount+1)
	for i, s := range samples {
		if len(s.Features) != features.CoordCount {
			return fmt.Errorf("sample %d has %d features, expected %d", i, len(s.Features), features.CoordCount)
		}
		for j, f := range s.Features {
			row[j] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		row[features.CoordCount] = string(s.Label)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a table written by WriteCSV. Labels are matched case-insensitively.
func ReadCSV(r io.Reader) ([]gesture.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = features.CoordCount + 1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty csv")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if header[features.CoordCount] != LabelColumn {
		return nil, fmt.Errorf("last column is %q, expected %q", header[features.CoordCount], LabelColumn)
	}

	var samples []gesture.Sample
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		label, err := gesture.ParseMove(rec[features.CoordCount])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		v := make([]float64, features.CoordCount)
		for i := range v {
			v[i], err = strconv.ParseFloat(rec[i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, header[i], err)
			}
		}
		samples = append(samples, gesture.Sample{Label: label, Features: v})
	}

	return samples, nil
}

// FromStore converts stored rows into training samples. Rows with a label
// that is not a move or with the wrong width are rejected.
func FromStore(rows []*store.Sample) ([]gesture.Sample, error) {
	out := make([]gesture.Sample, 0, len(rows))
	for _, r := range rows {
		label, err := gesture.ParseMove(r.Label)
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", r.ID, err)
		}
		if len(r.Features) != features.CoordCount {
			return nil, fmt.Errorf("sample %s has %d features, expected %d", r.ID, len(r.Features), features.CoordCount)
		}
		out = append(out, gesture.Sample{Label: label, Features: r.Features})
	}
	return out, nil
}
