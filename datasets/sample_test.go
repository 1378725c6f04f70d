package datasets

import (
	"encoding/json"
	"errors"
	"io/fs"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample_PersonName(t *testing.T) {
	id := testIdentity()
	assert.Equal(t, "p13", NewSample(id).PersonName())

	id.CategoryName = "negative-chairs"
	assert.Equal(t, NegativeName, NewSample(id).PersonName())

	// only the first hyphen token counts
	id.CategoryName = "personal-1"
	assert.Equal(t, NegativeName, NewSample(id).PersonName())

	id.CategoryName = "person"
	assert.Equal(t, "p13", NewSample(id).PersonName())
}

func TestSample_FromFilepath(t *testing.T) {
	id := testIdentity()
	for _, p := range []string{
		BuildPath(id, JSONSubfolder, JSONSuffix),
		BuildPath(id, PatchSubfolder, DepthPatchSuffix),
	} {
		s, err := SampleFromFilepath(p)
		require.NoError(t, err)
		assert.Equal(t, id, s.Identity())
		assert.Equal(t, id.Basepath, s.Basepath())
		assert.Equal(t, id.SetName, s.SetName())
		assert.Equal(t, id.CategoryName, s.CategoryName())
		assert.Equal(t, id.TapeName, s.TapeName())
		assert.Equal(t, id.Basename, s.Basename())
	}

	_, err := SampleFromFilepath("frame.json")
	assert.ErrorIs(t, err, ErrMalformedPath)
}

func TestSample_Filepaths(t *testing.T) {
	s := NewSample(testIdentity())
	base := "/data/train/person-sitting-2/"
	tape := "/p13_tape-iros2020-2020-01-31_14-11-44.891674/10078_10000"
	assert.Equal(t, base+"json"+tape+".json", s.JSONFilepath())
	assert.Equal(t, base+"instances"+tape+"_Depth.pgm", s.DepthPatchFilepath())
	assert.Equal(t, base+"instances"+tape+"_Mask.png", s.MaskFilepath())
}

func TestSample_JSONIsCached(t *testing.T) {
	reader := &countingJSONReader{annotation: Annotation{ClassKey: "sitting"}}
	s := NewSample(testIdentity(), WithJSONReader(reader))

	first, err := s.JSON()
	require.NoError(t, err)
	second, err := s.JSON()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	_, err = s.PostureClass()
	require.NoError(t, err)
	assert.Equal(t, 1, reader.calls)
}

func TestSample_JSONErrorIsNotCached(t *testing.T) {
	reader := &countingJSONReader{err: errors.New("boom")}
	s := NewSample(testIdentity(), WithJSONReader(reader))

	_, err := s.JSON()
	require.Error(t, err)

	reader.err = nil
	reader.annotation = Annotation{ClassKey: "other"}
	a, err := s.JSON()
	require.NoError(t, err)
	assert.Equal(t, "other", a[ClassKey])
	assert.Equal(t, 2, reader.calls)
}

func TestSample_JSONMissingFile(t *testing.T) {
	s := NewSample(testIdentity(), WithFs(afero.NewMemMapFs()))
	_, err := s.JSON()
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, err = s.IsPerson()
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSample_JSONMalformed(t *testing.T) {
	fsys := afero.NewMemMapFs()
	id := testIdentity()
	writeFile(t, fsys, BuildPath(id, JSONSubfolder, JSONSuffix), []byte(`{"Class": `))

	_, err := NewSample(id, WithFs(fsys)).JSON()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, fs.ErrNotExist)
}

func TestSample_Posture(t *testing.T) {
	for class, want := range map[string]int{
		"standing":  0,
		"squatting": 1,
		"sitting":   2,
		"other":     3,
		"negative":  IgnoreIndex,
		"person":    IgnoreIndex,
		"Standing":  IgnoreIndex,
		"":          IgnoreIndex,
	} {
		s := NewSample(testIdentity(), WithJSONReader(&countingJSONReader{annotation: Annotation{ClassKey: class}}))

		got, err := s.PostureClass()
		require.NoError(t, err)
		assert.Equal(t, want, got, class)

		name, err := s.PostureName()
		require.NoError(t, err)
		assert.Equal(t, class, name)

		isPerson, err := s.IsPerson()
		require.NoError(t, err)
		assert.Equal(t, class != "negative", isPerson, class)
	}
}

func TestSample_PersonNameIgnoresClass(t *testing.T) {
	id := testIdentity()
	id.CategoryName = "negative-1"
	s := NewSample(id, WithJSONReader(&countingJSONReader{annotation: Annotation{ClassKey: "standing"}}))

	isPerson, err := s.IsPerson()
	require.NoError(t, err)
	assert.True(t, isPerson)
	assert.Equal(t, NegativeName, s.PersonName())
}

func TestSample_MissingClass(t *testing.T) {
	s := NewSample(testIdentity(), WithJSONReader(&countingJSONReader{annotation: Annotation{}}))

	_, err := s.IsPerson()
	assert.ErrorIs(t, err, ErrMissingKey)
	_, err = s.PostureClass()
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestSample_Orientation(t *testing.T) {
	assert.Equal(t, -100.0, NewSample(testIdentity()).Orientation())
}

func TestSample_MaskPatch(t *testing.T) {
	// channel 0 holds the row, channel 1 the column
	full := NewPixelArray(40, 30, 2, 8)
	for y := 0; y < full.Height; y++ {
		for x := 0; x < full.Width; x++ {
			full.Set(y, x, 0, uint16(y))
			full.Set(y, x, 1, uint16(x))
		}
	}
	loader := &staticImageLoader{img: full}
	reader := &countingJSONReader{annotation: Annotation{
		ClassKey:     "standing",
		ROIXKey:      json.Number("10"),
		ROIYKey:      json.Number("20"),
		ROIWidthKey:  json.Number("5"),
		ROIHeightKey: json.Number("8"),
	}}
	s := NewSample(testIdentity(), WithImageLoader(loader), WithJSONReader(reader))

	mask, err := s.MaskPatch()
	require.NoError(t, err)
	assert.Equal(t, []string{s.MaskFilepath()}, loader.paths)
	assert.Equal(t, []int{8, 5, 2}, mask.Shape())
	for y := 0; y < 8; y++ {
		for x := 0; x < 5; x++ {
			assert.Equal(t, uint16(20+y), mask.At(y, x, 0))
			assert.Equal(t, uint16(10+x), mask.At(y, x, 1))
		}
	}
}

func TestSample_MaskPatchMissingROI(t *testing.T) {
	loader := &staticImageLoader{img: NewPixelArray(4, 4, 1, 8)}
	reader := &countingJSONReader{annotation: Annotation{
		ClassKey: "standing",
		ROIXKey:  json.Number("1"),
		ROIYKey:  json.Number("1"),
	}}
	s := NewSample(testIdentity(), WithImageLoader(loader), WithJSONReader(reader))

	_, err := s.MaskPatch()
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestSample_DepthPatch(t *testing.T) {
	depth := NewPixelArray(2, 2, 1, 16)
	loader := &staticImageLoader{img: depth}
	s := NewSample(testIdentity(), WithImageLoader(loader))

	got, err := s.DepthPatch()
	require.NoError(t, err)
	assert.Same(t, depth, got)
	assert.Equal(t, []string{s.DepthPatchFilepath()}, loader.paths)
}

func TestSample_PatchesFromFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	id := testIdentity()
	writeAnnotation(t, fsys, id, "sitting", ROI{X: 1, Y: 2, Width: 3, Height: 2})
	writeFile(t, fsys, BuildPath(id, PatchSubfolder, DepthPatchSuffix), encodePGM16([][]uint16{{1000, 2000}, {3000, 65535}}))
	writeFile(t, fsys, BuildPath(id, PatchSubfolder, MaskSuffix), encodeGrayPNG(t, 6, 5))

	s := NewSample(id, WithFs(fsys))

	depth, err := s.DepthPatch()
	require.NoError(t, err)
	assert.Equal(t, []uint16{1000, 2000, 3000, 65535}, depth.Pix)
	assert.Equal(t, 16, depth.BitDepth)

	mask, err := s.MaskPatch()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1}, mask.Shape())
	// rows 2..3, cols 1..3 of a 6 wide image holding y*6+x
	assert.Equal(t, []uint16{13, 14, 15, 19, 20, 21}, mask.Pix)
}
