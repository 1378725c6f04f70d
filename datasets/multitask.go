package datasets

import (
	"fmt"
	"path/filepath"
	"slices"

	"go.uber.org/zap"
)

// MultiTaskDataset holds the samples of one set. Samples are ordered by
// category name, then by the order the annotation files were found in.
type MultiTaskDataset struct {
	basepath   string
	setName    string
	categories []string
	samples    []*Sample

	logger *zap.Logger
}

// NewMultiTaskDataset indexes every annotation file below
// basepath/setName/*/json. Only paths are read; annotations and images load
// lazily from the samples.
func NewMultiTaskDataset(basepath, setName string, opts ...Option) (*MultiTaskDataset, error) {
	if !slices.Contains(Sets, setName) {
		return nil, fmt.Errorf("%w: %q, expected one of %v", ErrInvalidSet, setName, Sets)
	}
	o := buildOptions(opts)

	ds := &MultiTaskDataset{
		basepath: basepath,
		setName:  setName,
		logger:   o.logger.With(zap.String("set", setName)),
	}

	setPath := filepath.Join(basepath, setName)
	categories, err := listDirs(o.fs, setPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories in %s: %w", setPath, err)
	}
	ds.categories = categories

	for _, category := range categories {
		jsonPath := filepath.Join(setPath, category, JSONSubfolder)
		files, err := FilesByExtension(o.fs, jsonPath, JSONSuffix, WalkOptions{Recursive: true, FollowLinks: true})
		if err != nil {
			return nil, fmt.Errorf("failed to find annotations for category %s: %w", category, err)
		}
		if len(files) == 0 {
			ds.logger.Debug("category has no annotations", zap.String("category", category), zap.String("path", jsonPath))
		}

		for _, fp := range files {
			sample, err := sampleFromFilepath(fp, o)
			if err != nil {
				return nil, err
			}
			ds.samples = append(ds.samples, sample)
		}
		ds.logger.Debug("indexed category", zap.String("category", category), zap.Int("samples", len(files)))
	}

	ds.logger.Info("dataset loaded", zap.String("basepath", basepath), zap.Int("samples", len(ds.samples)))
	return ds, nil
}

// LoadSet loads a specific set of the dataset.
func LoadSet(basepath, setName string, opts ...Option) (*MultiTaskDataset, error) {
	return NewMultiTaskDataset(basepath, setName, opts...)
}

func (d *MultiTaskDataset) DatasetBasepath() string { return d.basepath }
func (d *MultiTaskDataset) SetName() string         { return d.setName }

// Categories returns the category directories found at construction, sorted.
func (d *MultiTaskDataset) Categories() []string {
	return slices.Clone(d.categories)
}

// Len returns the number of samples.
func (d *MultiTaskDataset) Len() int {
	return len(d.samples)
}

// Sample returns the sample at index i.
func (d *MultiTaskDataset) Sample(i int) (*Sample, error) {
	if i < 0 || i >= len(d.samples) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(d.samples))
	}
	return d.samples[i], nil
}

// StripToMultipleOfBatchSize drops the trailing samples that do not fill a
// complete batch. The dropped samples are gone for good.
func (d *MultiTaskDataset) StripToMultipleOfBatchSize(batchSize int) error {
	if batchSize < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidBatchSize, batchSize)
	}
	nBatches := len(d.samples) / batchSize
	keep := nBatches * batchSize
	if keep < len(d.samples) {
		d.logger.Debug("stripping samples", zap.Int("batch_size", batchSize), zap.Int("dropped", len(d.samples)-keep))
		clear(d.samples[keep:])
		d.samples = d.samples[:keep]
	}
	return nil
}
