//go:build ocr

// Package scan imports scanned page images as editable documents.
//
// Recognition is delegated to the Tesseract OCR engine via gosseract,
// which requires Tesseract to be installed on the system. On macOS,
// install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package scan

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/pagina/model"
)

// Client wraps Tesseract for page recognition.
type Client struct {
	client *gosseract.Client
}

// New creates a recognition client.
// The client should be closed when no longer needed to release engine
// resources.
func New() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

// Close releases engine resources.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// SetLanguage sets the language(s) used for recognition.
// Multiple languages can be specified as a "+" separated string
// (e.g., "eng+fra"). Default is "eng" (English).
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// Text recognizes a page image (PNG, TIFF, JPEG, etc.) and returns the
// raw text with leading/trailing whitespace trimmed.
func (c *Client) Text(image []byte) (string, error) {
	if err := c.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognition failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// Page recognizes a page image and splits the result into paragraphs
// at blank lines.
func (c *Client) Page(image []byte) ([]*model.Paragraph, error) {
	text, err := c.Text(image)
	if err != nil {
		return nil, err
	}
	return Paragraphs(text), nil
}

// ImportPages recognizes a sequence of page images into a new document,
// one run of paragraphs per page in page order.
func (c *Client) ImportPages(pages ...[]byte) (*model.Document, error) {
	doc := model.NewDocument()
	for i, image := range pages {
		paras, err := c.Page(image)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		for _, p := range paras {
			doc.Body.Append(p)
		}
	}
	return doc, nil
}
