package garmentag

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

// makeJPEG returns a minimal valid JPEG of the given dimensions.
func makeJPEG(w, h int) []byte {
	return makeSolidJPEG(w, h, color.RGBA{R: 100, G: 149, B: 237, A: 255})
}

// makeSolidJPEG returns a JPEG of the given dimensions filled with c.
func makeSolidJPEG(w, h int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		panic("makeJPEG: " + err.Error())
	}
	return buf.Bytes()
}

// writeFile writes data to dir/name and returns the path.
func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", p, err)
	}
	return p
}

// writeJPEG writes a small JPEG to dir/name and returns the path.
func writeJPEG(t *testing.T, dir, name string) string {
	t.Helper()
	return writeFile(t, dir, name, makeJPEG(16, 16))
}

// poseWith returns a full landmark set where the first nUpper upper body
// indices and the first nLower lower body indices have visibility vis and
// every other landmark has visibility 0.
func poseWith(nUpper, nLower int, vis float64) LandmarkSet {
	set := make(LandmarkSet, LandmarkCount)
	for _, i := range UpperBodyIndices[:nUpper] {
		set[i].Visibility = vis
	}
	for _, i := range LowerBodyIndices[:nLower] {
		set[i].Visibility = vis
	}
	return set
}

// fakeOracle returns a fixed result and counts detector lifecycles.
type fakeOracle struct {
	set     LandmarkSet
	err     error
	openErr error
	panics  bool

	opens   int
	detects int
	closes  int
}

func (f *fakeOracle) Open(context.Context) (Detector, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opens++
	return &fakeDetector{oracle: f}, nil
}

type fakeDetector struct {
	oracle *fakeOracle
}

func (d *fakeDetector) Detect(context.Context, image.Image) (LandmarkSet, error) {
	d.oracle.detects++
	if d.oracle.panics {
		panic("detector crashed")
	}
	return d.oracle.set, d.oracle.err
}

func (d *fakeDetector) Close() error {
	d.oracle.closes++
	return nil
}
