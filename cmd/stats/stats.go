package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/Noofbiz/multitask/datasets"
)

// unreadable is the posture reported for samples whose annotation fails to load.
const unreadable = "unreadable"

// Stats counts samples along the path-derived and annotated dimensions.
type Stats struct {
	Total      int
	ByCategory map[string]int
	ByPerson   map[string]int
	// ByPosture is keyed by the raw Class value; empty unless annotations
	// were read.
	ByPosture map[string]int
}

func newStats() *Stats {
	return &Stats{
		ByCategory: make(map[string]int),
		ByPerson:   make(map[string]int),
		ByPosture:  make(map[string]int),
	}
}

var csvHeader = []string{
	"index", "set", "category", "tape", "basename", "person",
	"posture_name", "posture_class", "is_person",
	"json_path", "depth_path", "mask_path",
}

// collect walks ds and returns its stats. When w is non-nil a CSV row per
// sample is written to it. Annotation errors are logged and counted, they do
// not stop the walk.
func collect(ds datasets.Dataset, readAnnotations bool, w io.Writer, logger *zap.Logger) (*Stats, error) {
	var cw *csv.Writer
	if w != nil {
		cw = csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return nil, fmt.Errorf("failed to write csv header: %w", err)
		}
	}

	stats := newStats()
	for i := range ds.Len() {
		s, err := ds.Sample(i)
		if err != nil {
			return nil, err
		}
		stats.Total++
		stats.ByCategory[s.CategoryName()]++
		stats.ByPerson[s.PersonName()]++

		postureName, postureClass, isPerson := "", "", ""
		if readAnnotations {
			name, err := s.PostureName()
			if err != nil {
				logger.Warn("failed to read annotation", zap.Stringer("sample", s), zap.Error(err))
				name = unreadable
			} else {
				postureName = name
				postureClass = strconv.Itoa(datasets.PostureClass(name))
				isPerson = strconv.FormatBool(name != datasets.NegativeName)
			}
			stats.ByPosture[name]++
		}

		if cw != nil {
			row := []string{
				strconv.Itoa(i), s.SetName(), s.CategoryName(), s.TapeName(), s.Basename(), s.PersonName(),
				postureName, postureClass, isPerson,
				s.JSONFilepath(), s.DepthPatchFilepath(), s.MaskFilepath(),
			}
			if err := cw.Write(row); err != nil {
				return nil, fmt.Errorf("failed to write csv row %d: %w", i, err)
			}
		}
	}

	if cw != nil {
		cw.Flush()
		if err := cw.Error(); err != nil {
			return nil, fmt.Errorf("failed to flush csv: %w", err)
		}
	}
	return stats, nil
}
