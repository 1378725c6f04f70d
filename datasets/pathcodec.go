package datasets

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Identity is the path-derived identity of a sample.
type Identity struct {
	// Basepath is the dataset root, e.g. "/datasets/NICR-Multi-Task-Dataset".
	Basepath string
	// SetName is one of Sets.
	SetName string
	// CategoryName, e.g. "person-sitting-2".
	CategoryName string
	// TapeName is the recording name, e.g.
	// "p13_tape-iros2020-2020-01-31_14-11-44.891674".
	TapeName string
	// Basename identifies the frame within the tape, e.g. "10078_10000".
	Basename string
}

// basenameSuffixes are stripped from a filename to get the sample basename.
// MaskSuffix is not part of the list, so a mask path keeps its suffix.
var basenameSuffixes = []string{JSONSuffix, DepthPatchSuffix}

// Decompose derives the identity of a sample from the path of any of its
// files, e.g.
//
//	/NICR-Multi-Task-Dataset/train/person-squatting-2/instances/p14_tape-1-2019-08-13_10-45-05.729928/10101_10000_Depth.pgm
//
// The path must have the fixed set/category/subfolder/tape nesting; the
// subfolder level is discarded.
func Decompose(path string) (Identity, error) {
	dir, file := filepath.Split(path)
	if file == "" {
		return Identity{}, fmt.Errorf("%w: %q has no filename", ErrMalformedPath, path)
	}

	// tape, subfolder, category, set, from the innermost level outwards
	var levels [4]string
	rest := filepath.Clean(dir)
	for i := range levels {
		parent, name := filepath.Split(rest)
		if !validSegment(name) {
			return Identity{}, fmt.Errorf("%w: %q lacks directory level %d", ErrMalformedPath, path, i+1)
		}
		levels[i] = name
		rest = trimSeparator(parent)
	}

	return Identity{
		Basepath:     rest,
		SetName:      levels[3],
		CategoryName: levels[2],
		TapeName:     levels[0],
		Basename:     sampleBasename(file),
	}, nil
}

// BuildPath composes basepath/set/category/subfolder/tape/basename+suffix.
// It does not check that the file exists.
func BuildPath(id Identity, subfolder, suffix string) string {
	return filepath.Join(id.Basepath, id.SetName, id.CategoryName, subfolder, id.TapeName, id.Basename+suffix)
}

func sampleBasename(file string) string {
	for _, suffix := range basenameSuffixes {
		if strings.HasSuffix(file, suffix) {
			return strings.TrimSuffix(file, suffix)
		}
	}
	return file
}

func validSegment(name string) bool {
	return name != "" && name != "." && name != ".."
}

// trimSeparator drops the trailing separator filepath.Split leaves on the
// parent, keeping a bare root such as "/" intact.
func trimSeparator(p string) string {
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}
