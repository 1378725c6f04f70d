package main

import (
	"fmt"
	"image/color"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// plotCounts writes a bar chart of counts, one bar per key in sorted order,
// to outDir/name.png and returns the written path.
func plotCounts(outDir, name, title string, counts map[string]int) (string, error) {
	keys := sortedKeys(counts)
	values := make(plotter.Values, len(keys))
	for i, k := range keys {
		values[i] = float64(counts[k])
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "samples"

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return "", fmt.Errorf("failed to create bar chart %s: %w", name, err)
	}
	bars.Color = color.RGBA{R: 20, G: 80, B: 200, A: 220}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.Add(plotter.NewGrid())
	p.NominalX(keys...)
	p.X.Tick.Label.Rotation = 0.6
	p.X.Tick.Label.XAlign = -1

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	outPath := filepath.Join(outDir, name+".png")
	width := max(6*vg.Inch, vg.Length(len(keys))*0.4*vg.Inch)
	if err := p.Save(width, 5*vg.Inch, outPath); err != nil {
		return "", fmt.Errorf("failed to save plot %s: %w", outPath, err)
	}
	return outPath, nil
}

func sortedKeys(m map[string]int) []string {
	return slices.Sorted(maps.Keys(m))
}
