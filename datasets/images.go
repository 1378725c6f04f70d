package datasets

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/spakin/netpbm"
	"github.com/spf13/afero"
)

// PixelArray is a decoded image stored row major with interleaved channels.
// Values keep the bit depth of the source file: 8-bit images hold 0..255,
// 16-bit images (depth patches) hold raw 0..65535 values.
type PixelArray struct {
	Height   int
	Width    int
	Channels int
	BitDepth int
	Pix      []uint16
}

// NewPixelArray allocates a zeroed array.
func NewPixelArray(height, width, channels, bitDepth int) *PixelArray {
	return &PixelArray{
		Height:   height,
		Width:    width,
		Channels: channels,
		BitDepth: bitDepth,
		Pix:      make([]uint16, height*width*channels),
	}
}

func (p *PixelArray) offset(y, x, c int) int {
	return (y*p.Width+x)*p.Channels + c
}

// At returns the value at row y, column x, channel c.
func (p *PixelArray) At(y, x, c int) uint16 {
	return p.Pix[p.offset(y, x, c)]
}

// Set stores v at row y, column x, channel c.
func (p *PixelArray) Set(y, x, c int, v uint16) {
	p.Pix[p.offset(y, x, c)] = v
}

// Shape returns [height, width, channels].
func (p *PixelArray) Shape() []int {
	return []int{p.Height, p.Width, p.Channels}
}

// Crop returns a copy of rows [y0, y1) and columns [x0, x1) with all channels.
// Bounds are clamped to the image the way slicing clamps, so a window partly
// outside the image yields the overlapping part and an empty window yields a
// zero sized array.
func (p *PixelArray) Crop(x0, y0, x1, y1 int) *PixelArray {
	x0, x1 = clampRange(x0, x1, p.Width)
	y0, y1 = clampRange(y0, y1, p.Height)

	out := NewPixelArray(y1-y0, x1-x0, p.Channels, p.BitDepth)
	rowLen := out.Width * p.Channels
	for y := y0; y < y1; y++ {
		src := p.offset(y, x0, 0)
		dst := (y - y0) * rowLen
		copy(out.Pix[dst:dst+rowLen], p.Pix[src:src+rowLen])
	}
	return out
}

func clampRange(lo, hi, n int) (int, int) {
	lo = max(0, min(lo, n))
	hi = max(0, min(hi, n))
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// ToGomlxTensor converts the array into a uint16 gomlx tensor of shape
// [height, width, channels].
func (p *PixelArray) ToGomlxTensor() *tensors.Tensor {
	data := make([]uint16, len(p.Pix))
	copy(data, p.Pix)
	return tensors.FromFlatDataAndDimensions(data, p.Height, p.Width, p.Channels)
}

// ImageLoader decodes the image stored at path.
type ImageLoader interface {
	LoadImage(path string) (*PixelArray, error)
}

// FsImageLoader decodes PGM (8 or 16 bit) and PNG files from an afero
// filesystem.
type FsImageLoader struct {
	fs afero.Fs
}

// NewFsImageLoader returns an ImageLoader backed by fs.
func NewFsImageLoader(fs afero.Fs) *FsImageLoader {
	return &FsImageLoader{fs: fs}
}

// LoadImage decodes the file at path. Gray images produce one channel,
// everything else three (alpha is dropped).
func (l *FsImageLoader) LoadImage(path string) (*PixelArray, error) {
	file, err := l.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".pgm") {
		img, err := netpbm.Decode(file, &netpbm.DecodeOptions{Target: netpbm.PGM, Exact: true})
		if err != nil {
			return nil, fmt.Errorf("failed to decode pgm %s: %w", path, err)
		}
		return fromNetpbm(img), nil
	}

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return fromImage(img), nil
}

// fromNetpbm keeps the raw sample values of the file, undoing the scaling
// to 16 bit done by the color model.
func fromNetpbm(img netpbm.Image) *PixelArray {
	maxValue := uint32(img.MaxValue())
	bitDepth := 8
	if maxValue > 255 {
		bitDepth = 16
	}
	b := img.Bounds()
	out := NewPixelArray(b.Dy(), b.Dx(), 1, bitDepth)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			v := (r*maxValue + 0x7fff) / 0xffff
			out.Set(y-b.Min.Y, x-b.Min.X, 0, uint16(v))
		}
	}
	return out
}

func fromImage(img image.Image) *PixelArray {
	b := img.Bounds()
	switch src := img.(type) {
	case *image.Gray:
		out := NewPixelArray(b.Dy(), b.Dx(), 1, 8)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				out.Set(y-b.Min.Y, x-b.Min.X, 0, uint16(src.GrayAt(x, y).Y))
			}
		}
		return out
	case *image.Gray16:
		out := NewPixelArray(b.Dy(), b.Dx(), 1, 16)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				out.Set(y-b.Min.Y, x-b.Min.X, 0, src.Gray16At(x, y).Y)
			}
		}
		return out
	}

	out := NewPixelArray(b.Dy(), b.Dx(), 3, 8)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.Set(y-b.Min.Y, x-b.Min.X, 0, uint16(c.R))
			out.Set(y-b.Min.Y, x-b.Min.X, 1, uint16(c.G))
			out.Set(y-b.Min.Y, x-b.Min.X, 2, uint16(c.B))
		}
	}
	return out
}
