package datasets

import (
	"fmt"
	"strings"
	"sync"
)

// IgnoreIndex is the label used for samples without a posture (negatives or
// persons in an unlisted posture). Training loops skip it in the loss, like
// PyTorch's default ignore_index.
const IgnoreIndex = -100

// IgnoreOrientation is returned by Sample.Orientation; orientations are not
// annotated.
const IgnoreOrientation = -100.0

// NegativeName is the person name of samples from non-person categories and
// the Class value of negative samples.
const NegativeName = "negative"

var postureClasses = map[string]int{
	"standing":  0,
	"squatting": 1,
	"sitting":   2,
	"other":     3,
}

// Sample is a single recorded instance. Its identity comes from the path
// layout; the annotation is read on first use and cached for the lifetime of
// the sample.
type Sample struct {
	id         Identity
	personName string
	opts       *options

	mu   sync.Mutex
	json Annotation
}

// NewSample creates a sample from its identity fields. No file is touched.
func NewSample(id Identity, opts ...Option) *Sample {
	return newSample(id, buildOptions(opts))
}

// SampleFromFilepath creates the sample that path (the depth patch, mask or
// annotation file of the sample) belongs to.
func SampleFromFilepath(path string, opts ...Option) (*Sample, error) {
	return sampleFromFilepath(path, buildOptions(opts))
}

func sampleFromFilepath(path string, o *options) (*Sample, error) {
	id, err := Decompose(path)
	if err != nil {
		return nil, err
	}
	return newSample(id, o), nil
}

func newSample(id Identity, o *options) *Sample {
	personName := NegativeName
	if category, _, _ := strings.Cut(id.CategoryName, "-"); category == "person" {
		personName, _, _ = strings.Cut(id.TapeName, "_")
	}
	return &Sample{id: id, personName: personName, opts: o}
}

func (s *Sample) Identity() Identity   { return s.id }
func (s *Sample) Basepath() string     { return s.id.Basepath }
func (s *Sample) SetName() string      { return s.id.SetName }
func (s *Sample) CategoryName() string { return s.id.CategoryName }
func (s *Sample) TapeName() string     { return s.id.TapeName }
func (s *Sample) Basename() string     { return s.id.Basename }

// PersonName is the recorded person, e.g. "p13", or NegativeName for
// samples outside the person categories.
func (s *Sample) PersonName() string { return s.personName }

func (s *Sample) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", s.id.SetName, s.id.CategoryName, s.id.TapeName, s.id.Basename)
}

// JSON returns the annotation, reading it on first call. A failed read is
// not cached.
func (s *Sample) JSON() (Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.json != nil {
		return s.json, nil
	}
	a, err := s.opts.json.ReadJSON(s.JSONFilepath())
	if err != nil {
		return nil, err
	}
	s.json = a
	return a, nil
}

func (s *Sample) class() (string, error) {
	a, err := s.JSON()
	if err != nil {
		return "", err
	}
	return a.String(ClassKey)
}

// IsPerson reports whether the annotated class is not negative.
func (s *Sample) IsPerson() (bool, error) {
	class, err := s.class()
	if err != nil {
		return false, err
	}
	return class != NegativeName, nil
}

// PostureClass maps the annotated class to 0 (standing), 1 (squatting),
// 2 (sitting) or 3 (other). Any other class, negatives included, maps to
// IgnoreIndex.
func (s *Sample) PostureClass() (int, error) {
	class, err := s.class()
	if err != nil {
		return IgnoreIndex, err
	}
	return PostureClass(class), nil
}

// PostureClass maps a Class value to its label.
func PostureClass(class string) int {
	if label, ok := postureClasses[class]; ok {
		return label
	}
	return IgnoreIndex
}

// PostureName returns the raw annotated class.
func (s *Sample) PostureName() (string, error) {
	return s.class()
}

// Orientation always returns IgnoreOrientation.
func (s *Sample) Orientation() float64 {
	return IgnoreOrientation
}

func (s *Sample) JSONFilepath() string {
	return BuildPath(s.id, JSONSubfolder, JSONSuffix)
}

func (s *Sample) DepthPatchFilepath() string {
	return BuildPath(s.id, PatchSubfolder, DepthPatchSuffix)
}

func (s *Sample) MaskFilepath() string {
	return BuildPath(s.id, PatchSubfolder, MaskSuffix)
}

// DepthPatch loads the depth patch as produced by the image loader.
func (s *Sample) DepthPatch() (*PixelArray, error) {
	return s.opts.images.LoadImage(s.DepthPatchFilepath())
}

// MaskPatch loads the full mask and crops it to the annotated region of
// interest.
func (s *Sample) MaskPatch() (*PixelArray, error) {
	mask, err := s.opts.images.LoadImage(s.MaskFilepath())
	if err != nil {
		return nil, err
	}

	roi, err := s.ROI()
	if err != nil {
		return nil, err
	}
	return mask.Crop(roi.X, roi.Y, roi.X+roi.Width, roi.Y+roi.Height), nil
}

// ROI is the annotated region of interest in full mask coordinates.
type ROI struct {
	X, Y          int
	Width, Height int
}

// ROI reads the region of interest from the annotation.
func (s *Sample) ROI() (ROI, error) {
	a, err := s.JSON()
	if err != nil {
		return ROI{}, err
	}
	var roi ROI
	fields := []struct {
		key string
		dst *int
	}{
		{ROIXKey, &roi.X},
		{ROIYKey, &roi.Y},
		{ROIWidthKey, &roi.Width},
		{ROIHeightKey, &roi.Height},
	}
	for _, f := range fields {
		if *f.dst, err = a.Int(f.key); err != nil {
			return ROI{}, err
		}
	}
	return roi, nil
}
