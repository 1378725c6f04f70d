package datasets

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/afero"
)

// Annotation keys read by Sample.
const (
	ClassKey     = "Class"
	ROIXKey      = "ROI_X"
	ROIYKey      = "ROI_Y"
	ROIWidthKey  = "ROI_Width"
	ROIHeightKey = "ROI_Height"
)

// Annotation is the decoded JSON annotation of a sample. Numbers are kept as
// json.Number so integer fields survive decoding exactly.
type Annotation map[string]any

// String returns the string stored under key.
func (a Annotation) String(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is %T, not a string", ErrInvalidValue, key, v)
	}
	return s, nil
}

// Int returns the integer stored under key.
func (a Annotation) Int(key string) (int, error) {
	v, ok := a[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.Atoi(n.String())
		if err != nil {
			return 0, fmt.Errorf("%w: %q=%s is not an integer", ErrInvalidValue, key, n)
		}
		return i, nil
	case int:
		return n, nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%w: %q=%v is not an integer", ErrInvalidValue, key, n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %q is %T, not a number", ErrInvalidValue, key, v)
	}
}

// JSONReader reads the annotation stored at path.
type JSONReader interface {
	ReadJSON(path string) (Annotation, error)
}

// FsJSONReader reads annotations from an afero filesystem.
type FsJSONReader struct {
	fs afero.Fs
}

// NewFsJSONReader returns a JSONReader backed by fs.
func NewFsJSONReader(fs afero.Fs) *FsJSONReader {
	return &FsJSONReader{fs: fs}
}

// ReadJSON decodes the JSON object at path. Errors opening the file are
// wrapped, so errors.Is(err, fs.ErrNotExist) still reports missing files.
func (r *FsJSONReader) ReadJSON(path string) (Annotation, error) {
	file, err := r.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation %s: %w", path, err)
	}
	defer file.Close()

	dec := json.NewDecoder(file)
	dec.UseNumber()
	var a Annotation
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode annotation %s: %w", path, err)
	}
	if a == nil {
		return nil, fmt.Errorf("failed to decode annotation %s: not a JSON object", path)
	}
	return a, nil
}
