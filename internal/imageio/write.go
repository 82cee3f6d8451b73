package imageio

import (
	"encoding/binary"
	"image"
	"image/draw"
	"io"
	"math"

	"github.com/woozymasta/remap/internal/extrema"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
)

// PreviewQuality is the lossy webp quality of previews.
const PreviewQuality = 85

// WriteRaw dumps a map buffer as little-endian values of T.
func WriteRaw[T extrema.Number](w io.Writer, data []T) error {
	return binary.Write(w, binary.LittleEndian, data)
}

// Preview stretches a map buffer between ext into an 8-bit gray image and
// scales it so that its longer side is size pixels. Cells outside ext, NaN
// and blank cells are black. A size of zero keeps the map dimensions.
func Preview[T extrema.Number](data []T, samples, lines int, ext extrema.Extrema[T], blank T, size int) *image.RGBA {
	gray := image.NewGray(image.Rect(0, 0, samples, lines))

	lo, hi := float64(ext.Minimum), float64(ext.Maximum)
	span := hi - lo

	for i, v := range data {
		f := float64(v)
		if v == blank || math.IsNaN(f) || f < lo || f > hi {
			continue
		}

		level := 255.0
		if span > 0 {
			level = 1 + (f-lo)/span*254
		}
		gray.Pix[i] = uint8(math.Round(level))
	}

	width, height := samples, lines
	if size > 0 {
		if samples >= lines {
			width, height = size, max(1, int(math.Round(float64(lines)*float64(size)/float64(samples))))
		} else {
			width, height = max(1, int(math.Round(float64(samples)*float64(size)/float64(lines)))), size
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), gray, gray.Bounds(), draw.Src, nil)

	return dst
}

// WritePreview encodes the preview of a map buffer as webp.
func WritePreview[T extrema.Number](w io.Writer, data []T, samples, lines int, ext extrema.Extrema[T], blank T, size int) error {
	img := Preview(data, samples, lines, ext, blank, size)
	return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: PreviewQuality})
}
