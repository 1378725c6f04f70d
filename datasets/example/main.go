package main

// Example command that loads one set of the multi-task dataset, strips it to
// a multiple of the batch size and prints the first few samples together with
// the shapes of their depth and mask patches.
//
// The dataset uses lazy loading - only the paths of the annotation files are
// read at construction, annotations and images are read when accessed.
//
// Usage:
//   go run ./datasets/example -basepath /datasets/NICR-Multi-Task-Dataset -set valid

import (
	"flag"
	"fmt"

	"go.uber.org/zap"

	"github.com/Noofbiz/multitask/datasets"
)

func main() {
	basepath := flag.String("basepath", "../assets/NICR-Multi-Task-Dataset", "dataset root directory")
	set := flag.String("set", datasets.ValidSet, "set to load: train, valid or test")
	batchSize := flag.Int("batch-size", 8, "strip the set to a multiple of this batch size")
	n := flag.Int("n", 4, "number of samples to print")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ds, err := datasets.LoadSet(*basepath, *set, datasets.WithLogger(logger))
	if err != nil {
		logger.Fatal("failed to load dataset", zap.Error(err))
	}
	fmt.Printf("Loaded %s set from %s: %d samples in %d categories\n",
		ds.SetName(), ds.DatasetBasepath(), ds.Len(), len(ds.Categories()))

	if err := ds.StripToMultipleOfBatchSize(*batchSize); err != nil {
		logger.Fatal("failed to strip dataset", zap.Error(err))
	}
	fmt.Printf("After stripping to a multiple of %d: %d samples\n", *batchSize, ds.Len())

	for i := range min(*n, ds.Len()) {
		s, err := ds.Sample(i)
		if err != nil {
			logger.Fatal("failed to get sample", zap.Int("index", i), zap.Error(err))
		}

		posture, err := s.PostureName()
		if err != nil {
			logger.Warn("failed to read annotation", zap.Stringer("sample", s), zap.Error(err))
			continue
		}
		label, _ := s.PostureClass()
		fmt.Printf("Sample %d: %s person=%s posture=%s (%d)\n", i, s, s.PersonName(), posture, label)

		depth, err := s.DepthPatch()
		if err != nil {
			logger.Warn("failed to load depth patch", zap.Stringer("sample", s), zap.Error(err))
			continue
		}
		mask, err := s.MaskPatch()
		if err != nil {
			logger.Warn("failed to load mask patch", zap.Stringer("sample", s), zap.Error(err))
			continue
		}

		depthT := depth.ToGomlxTensor()
		fmt.Printf("  depth %v (%d bit) -> %s\n", depth.Shape(), depth.BitDepth, depthT.Shape())
		fmt.Printf("  mask  %v\n", mask.Shape())
	}
}
