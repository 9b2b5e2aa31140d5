// Package images builds floating image objects from encoded image data.
//
// Dimensions are probed with image.DecodeConfig, so only headers are
// read. PNG, JPEG, and GIF decoding comes from the standard library;
// TIFF, BMP, and WebP decoders are registered from golang.org/x/image.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/pagina/model"
)

// Probe reads the pixel dimensions and format name of encoded image
// data without decoding the pixels.
func Probe(data []byte) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("decoding image header: %w", err)
	}
	return cfg.Width, cfg.Height, format, nil
}

// New builds a floating object from encoded image data, anchored at the
// given flow offset. The natural size is the pixel size at 96 dpi.
func New(name string, data []byte, anchor uint32) (*model.FloatObject, error) {
	w, h, _, err := Probe(data)
	if err != nil {
		return nil, err
	}
	return &model.FloatObject{
		Name:   name,
		Kind:   model.ObjectImage,
		Anchor: anchor,
		Auto:   true,
		Size:   model.Size{W: model.FromPixels(w, 0), H: model.FromPixels(h, 0)},
		Data:   data,
	}, nil
}

// Open builds a floating object from an image file. The object is named
// after the file's base name.
func Open(filename string, anchor uint32) (*model.FloatObject, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	return New(filepath.Base(filename), data, anchor)
}

// Document wraps a single image in an otherwise empty document: one
// blank paragraph carrying the image as a floating object, the way a
// word processor inserts a picture into a new file.
func Document(name string, data []byte) (*model.Document, error) {
	obj, err := New(name, data, 0)
	if err != nil {
		return nil, err
	}
	doc := model.NewDocument()
	doc.Meta.Title = name
	doc.Body.Append(&model.Paragraph{})
	doc.AddObject(obj)
	return doc, nil
}
