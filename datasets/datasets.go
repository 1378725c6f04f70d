package datasets

import (
	"errors"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// This package indexes the multi-task depth dataset: recorded person and
// non-person samples stored as depth patches, masks and JSON annotations.
//
// Layout on disk (fixed):
//
//	basepath/set/category/instances/tape/basename_Depth.pgm
//	basepath/set/category/instances/tape/basename_Mask.png
//	basepath/set/category/json/tape/basename.json
//
// Datasets are built from the JSON files only and use lazy loading: a Sample
// stores its identity (derived from the path) and reads the annotation,
// depth patch or mask only when asked for it.

// Sets
const (
	TrainSet = "train"
	ValidSet = "valid"
	TestSet  = "test"
)

// Sets lists the valid set names.
var Sets = []string{TrainSet, ValidSet, TestSet}

// Subfolders
const (
	PatchSubfolder = "instances"
	JSONSubfolder  = "json"
)

// Basename suffixes
const (
	DepthPatchSuffix = "_Depth.pgm"
	JSONSuffix       = ".json"
	MaskSuffix       = "_Mask.png"
)

var (
	// ErrInvalidSet is returned when a set name is not one of Sets.
	ErrInvalidSet = errors.New("invalid set name")
	// ErrMalformedPath is returned when a filepath does not have the
	// set/category/subfolder/tape nesting.
	ErrMalformedPath = errors.New("malformed sample path")
	// ErrMissingKey is returned when an annotation lacks a required key.
	ErrMissingKey = errors.New("missing annotation key")
	// ErrInvalidValue is returned when an annotation value has the wrong type.
	ErrInvalidValue = errors.New("invalid annotation value")
	// ErrIndexOutOfRange is returned by positional access beyond the dataset.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidBatchSize is returned for batch sizes below one.
	ErrInvalidBatchSize = errors.New("invalid batch size")
)

// Dataset is implemented by MultiTaskDataset. Consumers such as training
// loops only need a count and indexed access.
type Dataset interface {
	Len() int
	Sample(i int) (*Sample, error)
}

// options holds the collaborators shared by a dataset and its samples.
type options struct {
	fs     afero.Fs
	logger *zap.Logger
	images ImageLoader
	json   JSONReader
}

// Option configures a MultiTaskDataset or a Sample.
type Option func(*options)

// WithFs sets the filesystem used for enumeration and default loaders.
// Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithImageLoader replaces the image loading collaborator.
func WithImageLoader(l ImageLoader) Option {
	return func(o *options) { o.images = l }
}

// WithJSONReader replaces the annotation reading collaborator.
func WithJSONReader(r JSONReader) Option {
	return func(o *options) { o.json = r }
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.images == nil {
		o.images = NewFsImageLoader(o.fs)
	}
	if o.json == nil {
		o.json = NewFsJSONReader(o.fs)
	}
	return o
}
