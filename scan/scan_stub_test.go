//go:build !ocr

package scan

import (
	"errors"
	"testing"
)

func TestNewReturnsError(t *testing.T) {
	client, err := New()
	if err == nil {
		t.Error("Expected error from New() when OCR is disabled")
	}
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("Expected ErrOCRNotEnabled, got: %v", err)
	}
	if client != nil {
		t.Error("Expected nil client when OCR is disabled")
	}
}

func TestCloseOnNilClient(t *testing.T) {
	var client *Client
	if err := client.Close(); err != nil {
		t.Errorf("Close on nil client should not error: %v", err)
	}
}

func TestStubOperationsReturnError(t *testing.T) {
	client := &Client{}

	if err := client.SetLanguage("eng"); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("SetLanguage: expected ErrOCRNotEnabled, got: %v", err)
	}
	if _, err := client.Text([]byte("img")); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("Text: expected ErrOCRNotEnabled, got: %v", err)
	}
	if _, err := client.Page([]byte("img")); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("Page: expected ErrOCRNotEnabled, got: %v", err)
	}
	if _, err := client.ImportPages([]byte("img")); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("ImportPages: expected ErrOCRNotEnabled, got: %v", err)
	}
}
