// Package imaging normalizes the two kinds of images the system
// stores: article photos and delivery signatures. Input formats are
// validated by sniffing bytes, never by trusting client headers.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxDimension is the maximum width or height for stored photos.
const MaxDimension = 1024

// SignatureMaxDimension bounds stored signature strokes. Signature
// pads produce small canvases, so this mostly guards against abuse.
const SignatureMaxDimension = 600

// JPEGQuality is the compression quality for photo output.
const JPEGQuality = 85

// AllowedMIME lists the accepted input MIME types.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Result contains the processed image data.
type Result struct {
	Data []byte
	MIME string
}

// ProcessPhoto validates, downscales and re-encodes an article photo.
// Output is always JPEG for consistency and size.
func ProcessPhoto(r io.Reader) (*Result, error) {
	img, err := decode(r)
	if err != nil {
		return nil, err
	}
	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return &Result{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// ProcessSignature validates and bounds a signature image. Output
// stays PNG: JPEG compression smears thin pen strokes.
func ProcessSignature(r io.Reader) (*Result, error) {
	img, err := decode(r)
	if err != nil {
		return nil, err
	}
	img = downscale(img, SignatureMaxDimension)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return &Result{Data: buf.Bytes(), MIME: "image/png"}, nil
}

// decode reads the full image, sniffs its real MIME type and decodes.
func decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return nil, fmt.Errorf("unsupported image format: %s (only JPEG and PNG accepted)", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// downscale resizes the image so neither dimension exceeds maxDim,
// preserving aspect ratio. Images already within bounds pass through.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
