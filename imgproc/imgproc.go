// Package imgproc turns a user-selected image file into something small
// enough to store and serve: validation against an allow-list and size cap,
// then a decode/resize/re-encode pipeline bounded by a target byte size and
// a maximum edge length.
package imgproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/webp" // register webp decoding
)

const (
	// MaxUploadBytes is the hard cap applied before compression, on both
	// the client and server side of the upload boundary.
	MaxUploadBytes = 5 << 20

	// DefaultTargetBytes is the post-compression size target (0.7 MiB).
	DefaultTargetBytes = 7 << 20 / 10

	// DefaultMaxEdge bounds the longest image edge after compression.
	DefaultMaxEdge = 2400

	// DefaultQuality is the JPEG quality used when re-encoding.
	DefaultQuality = 80

	// DefaultTargetType is the encoding compressed images are converted to.
	DefaultTargetType = "image/jpeg"
)

// Validation failures carry the exact messages the HTTP contract exposes.
var (
	ErrInvalidType = errors.New("Invalid file type. Please upload an image (JPEG, PNG, GIF, WebP, or SVG)")
	ErrTooLarge    = errors.New("File too large. Maximum size is 5MB")
)

var allowedTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// File is a named, typed blob of image data.
type File struct {
	Name string
	Type string
	Data []byte
}

// Options tunes Compress. Zero values fall back to the package defaults.
type Options struct {
	TargetBytes int64
	MaxEdge     int
	TargetType  string
	Quality     int
}

func (o Options) withDefaults() Options {
	if o.TargetBytes <= 0 {
		o.TargetBytes = DefaultTargetBytes
	}
	if o.MaxEdge <= 0 {
		o.MaxEdge = DefaultMaxEdge
	}
	if o.TargetType == "" {
		o.TargetType = DefaultTargetType
	}
	// No pure-Go webp encoder exists; a webp target falls back to jpeg.
	if o.TargetType == "image/webp" {
		o.TargetType = "image/jpeg"
	}
	if o.Quality <= 0 {
		o.Quality = DefaultQuality
	}
	return o
}

// AllowedType reports whether the declared MIME type is accepted for upload.
func AllowedType(mimeType string) bool {
	return allowedTypes[mimeType]
}

// Validate rejects files whose declared MIME type is not an accepted image
// type or whose size exceeds MaxUploadBytes.
func Validate(f File) error {
	if !AllowedType(f.Type) {
		return ErrInvalidType
	}
	if int64(len(f.Data)) > MaxUploadBytes {
		return ErrTooLarge
	}
	return nil
}

// Compress brings f under the target size and edge bounds.
//
// A file already below the target size in the target encoding passes through
// unchanged. A below-target file in a different encoding is re-encoded to
// the target type at fixed quality. At or above the target size, the image
// is decoded, bounded to MaxEdge, and re-encoded, stepping quality and
// dimensions down until the output fits. SVG is never decoded or re-encoded.
// The output name keeps the original base name with the extension swapped to
// match the final encoding.
func Compress(f File, opts Options) (File, error) {
	opts = opts.withDefaults()

	if f.Type == "image/svg+xml" {
		return f, nil
	}

	if int64(len(f.Data)) < opts.TargetBytes {
		if f.Type != opts.TargetType {
			return reencode(f, opts.TargetType, opts.Quality)
		}
		return f, nil
	}

	img, err := imaging.Decode(bytes.NewReader(f.Data), imaging.AutoOrientation(true))
	if err != nil {
		return File{}, fmt.Errorf("failed to compress image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > opts.MaxEdge || height > opts.MaxEdge {
		img = imaging.Fit(img, opts.MaxEdge, opts.MaxEdge, imaging.Lanczos)
	}

	// Step quality down first, then shrink dimensions. The loop always
	// terminates; if even the floor misses the target the smallest
	// rendition is returned as a best effort.
	var out []byte
	quality := opts.Quality
	for {
		out, err = encode(img, opts.TargetType, quality)
		if err != nil {
			return File{}, fmt.Errorf("failed to compress image: %w", err)
		}
		if int64(len(out)) <= opts.TargetBytes {
			break
		}
		if quality > 20 {
			quality -= 10
			continue
		}
		b := img.Bounds()
		if b.Dx() <= 64 && b.Dy() <= 64 {
			break
		}
		img = imaging.Resize(img, b.Dx()*4/5, 0, imaging.Lanczos)
	}

	return File{
		Name: swapExt(f.Name, opts.TargetType),
		Type: opts.TargetType,
		Data: out,
	}, nil
}

// reencode converts f to targetType at the given quality without resizing.
func reencode(f File, targetType string, quality int) (File, error) {
	img, err := imaging.Decode(bytes.NewReader(f.Data), imaging.AutoOrientation(true))
	if err != nil {
		return File{}, fmt.Errorf("failed to convert image: %w", err)
	}
	out, err := encode(img, targetType, quality)
	if err != nil {
		return File{}, fmt.Errorf("failed to convert image: %w", err)
	}
	return File{
		Name: swapExt(f.Name, targetType),
		Type: targetType,
		Data: out,
	}, nil
}

func encode(img image.Image, targetType string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch targetType {
	case "image/png":
		err = imaging.Encode(&buf, img, imaging.PNG)
	case "image/gif":
		err = imaging.Encode(&buf, img, imaging.GIF)
	default:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func swapExt(name, targetType string) string {
	ext := ".jpg"
	if targetType == "image/webp" {
		ext = ".webp"
	} else if targetType == "image/png" {
		ext = ".png"
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i] + ext
	}
	return name + ext
}
