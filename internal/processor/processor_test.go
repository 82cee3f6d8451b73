package processor

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/remap/internal/config"
	"github.com/woozymasta/remap/internal/correction"
	"github.com/woozymasta/remap/internal/geo"
	"github.com/woozymasta/remap/internal/projection"
	"github.com/woozymasta/remap/internal/source"
)

var body = geo.Body{Name: "Io", EquatorialRadius: 1829.4, PolarRadius: 1815.7}

// writeGradient stores a samples x lines 16-bit PNG whose cells hold
// 100*line + sample + base.
func writeGradient(t *testing.T, dir, name string, samples, lines, base int) string {
	t.Helper()

	img := image.NewGray16(image.Rect(0, 0, samples, lines))
	for y := 0; y < lines; y++ {
		for x := 0; x < samples; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16(100*y + x + base)})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func globalMap(name, typ string, sources ...config.Source) config.Map {
	return config.Map{
		Name:    name,
		Type:    typ,
		Samples: 8,
		Lines:   4,
		Projection: config.Projection{
			Kind:   config.ProjectionSimpleCylindrical,
			LatMin: -90, LatMax: 90, LonMin: 0, LonMax: 360,
		},
		Sources: sources,
	}
}

func globalRaster(path string) config.Source {
	return config.Source{Kind: config.SourceRaster, Path: path, LatMin: -90, LatMax: 90, LonMin: 0, LonMax: 360}
}

func decodeUint16(t *testing.T, raw []byte) []uint16 {
	t.Helper()
	out := make([]uint16, len(raw)/2)
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestRender_Raster(t *testing.T) {
	path := writeGradient(t, t.TempDir(), "io.png", 8, 4, 0)
	cfg := &config.Config{Body: body}
	m := globalMap("io", "uint16", globalRaster(path))

	for _, workers := range []int{1, 3} {
		r, err := Render(nil, cfg, m, Options{Workers: workers})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		values := decodeUint16(t, r.Raw)
		if len(values) != 32 {
			t.Fatalf("got %d values", len(values))
		}
		for line := 0; line < 4; line++ {
			for sample := 0; sample < 8; sample++ {
				if got, want := values[line*8+sample], uint16(100*line+sample); got != want {
					t.Errorf("workers %d cell (%d,%d) = %d, want %d", workers, line, sample, got, want)
				}
			}
		}

		meta := r.Metadata
		if meta.Body != "Io" || meta.Projection != "simple_cylindrical" || meta.Samples != 8 || meta.Lines != 4 {
			t.Errorf("unexpected metadata %+v", meta)
		}
		if meta.Blank == nil || *meta.Blank != 0 {
			t.Errorf("blank = %v, want 0", meta.Blank)
		}
		if meta.Minimum == nil || *meta.Minimum != 0 || meta.Maximum == nil || *meta.Maximum != 307 {
			t.Errorf("observed range %v..%v", meta.Minimum, meta.Maximum)
		}
		if r.Preview != nil {
			t.Errorf("preview rendered although disabled")
		}
	}
}

func TestRender_ScaledFloat(t *testing.T) {
	path := writeGradient(t, t.TempDir(), "io.png", 8, 4, 0)
	scale := 0.5
	src := globalRaster(path)
	src.Scale = &scale
	src.Offset = 1

	maximum := 100.0
	m := globalMap("io", "float32", src)
	m.Maximum = &maximum

	r, err := Render(nil, &config.Config{Body: body}, m, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	values := make([]float32, 32)
	if err := binary.Read(bytes.NewReader(r.Raw), binary.LittleEndian, values); err != nil {
		t.Fatal(err)
	}

	// 100*1 + 3 = 103 -> 52.5
	if values[8+3] != 52.5 {
		t.Errorf("cell (1,3) = %v, want 52.5", values[11])
	}
	// 100*2 + 0 = 200 -> 101, above the maximum
	if v := values[16]; !math.IsNaN(float64(v)) {
		t.Errorf("cell (2,0) = %v, want blank", v)
	}
	if r.Metadata.Blank != nil {
		t.Errorf("NaN blank encoded as %v", *r.Metadata.Blank)
	}
	if r.Metadata.Maximum == nil || *r.Metadata.Maximum != 54.5 {
		t.Errorf("observed maximum %v, want 54.5", r.Metadata.Maximum)
	}
}

func TestRender_Mosaic(t *testing.T) {
	dir := t.TempDir()
	west := writeGradient(t, dir, "west.png", 4, 4, 0)
	east := writeGradient(t, dir, "east.png", 4, 4, 1000)

	westSrc := globalRaster(west)
	westSrc.LonMax = 180
	eastSrc := globalRaster(east)
	eastSrc.LonMin = 180

	m := globalMap("io", "int32", westSrc, eastSrc)

	src, err := BuildSource(nil, body, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mosaic, ok := src.(*source.Mosaic); !ok || mosaic.Len() != 2 {
		t.Fatalf("sources not combined into a mosaic: %T", src)
	}

	r, err := Render(nil, &config.Config{Body: body}, m, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	values := make([]int32, 32)
	if err := binary.Read(bytes.NewReader(r.Raw), binary.LittleEndian, values); err != nil {
		t.Fatal(err)
	}

	if values[1*8+2] != 102 {
		t.Errorf("west cell = %d, want 102", values[10])
	}
	if values[1*8+6] != 1102 {
		t.Errorf("east cell = %d, want 1102", values[14])
	}
}

func TestRender_Errors(t *testing.T) {
	path := writeGradient(t, t.TempDir(), "io.png", 8, 4, 0)
	cfg := &config.Config{Body: body}

	blank := 300.0
	m := globalMap("io", "int8", globalRaster(path))
	m.Blank = &blank
	if _, err := Render(nil, cfg, m, Options{}); err == nil {
		t.Errorf("blank outside int8 accepted")
	}

	m = globalMap("io", "complex64", globalRaster(path))
	if _, err := Render(nil, cfg, m, Options{}); err == nil {
		t.Errorf("unknown type accepted")
	}

	m = globalMap("io", "uint8", globalRaster(filepath.Join(t.TempDir(), "none.png")))
	if _, err := Render(nil, cfg, m, Options{}); err == nil {
		t.Errorf("missing source accepted")
	}
}

func TestBuildSource_Photo(t *testing.T) {
	path := writeGradient(t, t.TempDir(), "frame.png", 8, 8, 0)
	m := config.Map{Name: "frame", Sources: []config.Source{{
		Kind: config.SourcePhoto,
		Path: path,
		Photo: &config.Photo{
			Range:             10000,
			FocalLength:       1500,
			PixelScale:        1,
			OpticalAxisLine:   4,
			OpticalAxisSample: 4,
		},
		Correction: &config.Correction{Kind: correction.KindGalileoSSI},
	}}}

	src, err := BuildSource(nil, body, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := src.(*source.Photo); !ok {
		t.Fatalf("got %T, want *source.Photo", src)
	}

	m.Sources[0].Correction.Kind = "voyager"
	if _, err := BuildSource(nil, body, m); err == nil {
		t.Errorf("unknown correction accepted")
	}
}

func TestBuildProjection(t *testing.T) {
	p, err := BuildProjection(body, config.Projection{Kind: config.ProjectionMercator, LonMax: 180, MaxLatitude: 80})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	merc, ok := p.(*projection.Mercator)
	if !ok || merc.LonMax != geo.Radians(180) || merc.MaxLatitude != geo.Radians(80) {
		t.Errorf("unexpected projection %#v", p)
	}

	p, err = BuildProjection(body, config.Projection{Kind: config.ProjectionOrthographic, SubObserverLon: 90, KmPerPixel: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ortho, ok := p.(*projection.Orthographic); !ok || ortho.SubObserverLon != geo.Radians(90) || ortho.KmPerPixel != 5 {
		t.Errorf("unexpected projection %#v", p)
	}

	if _, err := BuildProjection(body, config.Projection{Kind: "polyconic"}); err == nil {
		t.Errorf("unknown projection accepted")
	}
}

func TestRun(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "maps")
	path := writeGradient(t, src, "io.png", 8, 4, 0)

	good := globalMap("io", "uint16", globalRaster(path))
	good.PreviewSize = 16
	bad := globalMap("broken", "uint16", globalRaster(filepath.Join(src, "none.png")))
	cfg := &config.Config{Body: body, Maps: []config.Map{good, bad}}

	if failed := Run(nil, cfg, cfg.Maps, out, 2, false); failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}

	for _, ext := range []string{ExtRaw, ExtMetadata, ExtPreview} {
		if _, err := os.Stat(filepath.Join(out, "io"+ext)); err != nil {
			t.Errorf("missing output: %v", err)
		}
	}
	if Exists(out, "broken") {
		t.Errorf("failed map left output behind")
	}

	data, err := os.ReadFile(filepath.Join(out, "io"+ExtMetadata))
	if err != nil {
		t.Fatal(err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("invalid metadata: %v", err)
	}
	if meta.Name != "io" || meta.Type != "uint16" {
		t.Errorf("unexpected metadata %+v", meta)
	}

	// Existing output is kept unless forced.
	raw := filepath.Join(out, "io"+ExtRaw)
	if err := os.WriteFile(raw, []byte{1}, 0o644); err != nil {
		t.Fatal(err)
	}
	Run(nil, cfg, []config.Map{good}, out, 1, false)
	if info, _ := os.Stat(raw); info.Size() != 1 {
		t.Errorf("existing output overwritten without force")
	}
	Run(nil, cfg, []config.Map{good}, out, 1, true)
	if info, _ := os.Stat(raw); info.Size() != 64 {
		t.Errorf("forced run wrote %d bytes, want 64", info.Size())
	}
}

func TestProgressNotifier(t *testing.T) {
	n := ProgressNotifier("io")
	for done := uint64(1); done <= 20; done++ {
		n.Plotted(20, done)
	}
	n.Done(20)
	n.Plotted(0, 0)
}
