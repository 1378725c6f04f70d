package datasets

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// writeFile writes data to path on fsys, creating parent directories.
func writeFile(t *testing.T, fsys afero.Fs, path string, data []byte) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fsys, path, data, 0o644))
}

// writeAnnotation writes the annotation file of id.
func writeAnnotation(t *testing.T, fsys afero.Fs, id Identity, class string, roi ROI) {
	t.Helper()
	body := fmt.Sprintf(`{"Class": %q, "ROI_X": %d, "ROI_Y": %d, "ROI_Width": %d, "ROI_Height": %d}`,
		class, roi.X, roi.Y, roi.Width, roi.Height)
	writeFile(t, fsys, BuildPath(id, JSONSubfolder, JSONSuffix), []byte(body))
}

// encodePGM16 encodes a binary 16 bit PGM with the given rows.
func encodePGM16(rows [][]uint16) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "P5\n%d %d\n65535\n", len(rows[0]), len(rows))
	for _, row := range rows {
		for _, v := range row {
			_ = binary.Write(&buf, binary.BigEndian, v)
		}
	}
	return buf.Bytes()
}

// encodeGrayPNG encodes an 8 bit gray PNG where pixel (x, y) = y*width + x.
func encodeGrayPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Pix[y*img.Stride+x] = uint8(y*width + x)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// countingJSONReader counts calls and serves a fixed annotation.
type countingJSONReader struct {
	annotation Annotation
	err        error
	calls      int
}

func (r *countingJSONReader) ReadJSON(string) (Annotation, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.annotation, nil
}

// staticImageLoader returns the same image for every path and records the
// requested paths.
type staticImageLoader struct {
	img   *PixelArray
	paths []string
}

func (l *staticImageLoader) LoadImage(path string) (*PixelArray, error) {
	l.paths = append(l.paths, path)
	return l.img, nil
}

func testIdentity() Identity {
	return Identity{
		Basepath:     "/data",
		SetName:      TrainSet,
		CategoryName: "person-sitting-2",
		TapeName:     "p13_tape-iros2020-2020-01-31_14-11-44.891674",
		Basename:     "10078_10000",
	}
}
