//go:build !ocr

// Package scan imports scanned page images as editable documents.
//
// This is the stub implementation used when the "ocr" build tag is not
// set. All recognition functions return ErrOCRNotEnabled.
//
// To enable OCR, rebuild with the "ocr" build tag:
//
//	go build -tags ocr
//
// This requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package scan

import (
	"errors"

	"github.com/tsawler/pagina/model"
)

// ErrOCRNotEnabled is returned when recognition is requested but OCR
// support was not compiled in. Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Client is a stub recognition client that returns errors for all
// operations.
type Client struct{}

// New returns an error indicating OCR support is not enabled.
// To enable OCR, rebuild with: go build -tags ocr
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op for the stub client.
// It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}

// SetLanguage returns an error indicating OCR support is not enabled.
func (c *Client) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// Text returns an error indicating OCR support is not enabled.
func (c *Client) Text(image []byte) (string, error) {
	return "", ErrOCRNotEnabled
}

// Page returns an error indicating OCR support is not enabled.
func (c *Client) Page(image []byte) ([]*model.Paragraph, error) {
	return nil, ErrOCRNotEnabled
}

// ImportPages returns an error indicating OCR support is not enabled.
func (c *Client) ImportPages(pages ...[]byte) (*model.Document, error) {
	return nil, ErrOCRNotEnabled
}
