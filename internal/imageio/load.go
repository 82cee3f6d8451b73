// Package imageio reads source rasters and writes rendered maps.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/woozymasta/remap/internal/source"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads an image from a local path or an http(s) URL.
func Decode(client *http.Client, path string) (image.Image, error) {
	var reader io.Reader

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		if client == nil {
			client = http.DefaultClient
		}

		log.Info().Str("url", path).Msg("Downloading source image")
		resp, err := client.Get(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("download %s failed: %d", path, resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(body)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()

		reader = f
	}

	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("decode %s failed: %w", path, err)
	}

	b := img.Bounds()
	log.Debug().
		Str("source", path).
		Str("format", format).
		Int("width", b.Dx()).
		Int("height", b.Dy()).
		Msg("Image decoded successfully")

	return img, nil
}

// Load decodes an image and converts it to a grid of 16-bit gray levels.
func Load(client *http.Client, path string) (*source.Grid, error) {
	img, err := Decode(client, path)
	if err != nil {
		return nil, err
	}
	return GridFromImage(img), nil
}

// GridFromImage converts img to 16-bit gray levels. Line 0 is the top row.
func GridFromImage(img image.Image) *source.Grid {
	b := img.Bounds()
	grid := source.NewGrid(b.Dx(), b.Dy())

	switch m := img.(type) {
	case *image.Gray16:
		for y := 0; y < grid.Lines; y++ {
			for x := 0; x < grid.Samples; x++ {
				grid.Set(y, x, float64(m.Gray16At(b.Min.X+x, b.Min.Y+y).Y))
			}
		}
	case *image.Gray:
		for y := 0; y < grid.Lines; y++ {
			for x := 0; x < grid.Samples; x++ {
				grid.Set(y, x, float64(m.GrayAt(b.Min.X+x, b.Min.Y+y).Y)*0x101)
			}
		}
	default:
		for y := 0; y < grid.Lines; y++ {
			for x := 0; x < grid.Samples; x++ {
				c := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
				grid.Set(y, x, float64(c.Y))
			}
		}
	}

	return grid
}
