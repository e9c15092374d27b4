package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func makeJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func makePNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestProcessPhotoJPEG(t *testing.T) {
	result, err := ProcessPhoto(bytes.NewReader(makeJPEG(100, 100)))
	if err != nil {
		t.Fatalf("ProcessPhoto: %v", err)
	}
	if result.MIME != "image/jpeg" {
		t.Errorf("MIME = %s, want image/jpeg", result.MIME)
	}
	if len(result.Data) == 0 {
		t.Error("expected non-empty data")
	}
}

func TestProcessPhotoConvertsPNG(t *testing.T) {
	result, err := ProcessPhoto(bytes.NewReader(makePNG(100, 100)))
	if err != nil {
		t.Fatalf("ProcessPhoto: %v", err)
	}
	if result.MIME != "image/jpeg" {
		t.Errorf("photos always convert to JPEG, got %s", result.MIME)
	}
}

func TestProcessPhotoDownscale(t *testing.T) {
	result, err := ProcessPhoto(bytes.NewReader(makeJPEG(2048, 1024)))
	if err != nil {
		t.Fatalf("ProcessPhoto: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		t.Errorf("result %dx%d exceeds %d", bounds.Dx(), bounds.Dy(), MaxDimension)
	}
	if bounds.Dx() != 1024 || bounds.Dy() != 512 {
		t.Errorf("aspect ratio lost: got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestProcessSignatureStaysPNG(t *testing.T) {
	result, err := ProcessSignature(bytes.NewReader(makePNG(400, 150)))
	if err != nil {
		t.Fatalf("ProcessSignature: %v", err)
	}
	if result.MIME != "image/png" {
		t.Errorf("MIME = %s, want image/png", result.MIME)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 400 || bounds.Dy() != 150 {
		t.Errorf("in-bounds signature resized: got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestProcessSignatureBounded(t *testing.T) {
	result, err := ProcessSignature(bytes.NewReader(makePNG(1200, 400)))
	if err != nil {
		t.Fatalf("ProcessSignature: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > SignatureMaxDimension || bounds.Dy() > SignatureMaxDimension {
		t.Errorf("result %dx%d exceeds %d", bounds.Dx(), bounds.Dy(), SignatureMaxDimension)
	}
}

func TestProcessRejectsNonImages(t *testing.T) {
	if _, err := ProcessPhoto(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("expected error for garbage input")
	}
	if _, err := ProcessSignature(bytes.NewReader([]byte("GIF89a..."))); err == nil {
		t.Error("expected error for GIF input")
	}
}
