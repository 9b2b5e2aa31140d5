// Package format provides import format detection for the pagina library.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a supported import format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// Pagina indicates a Pagina document container.
	Pagina
	// HTML indicates an HTML document.
	HTML
	// Markdown indicates a Markdown document.
	Markdown
	// EPUB indicates an EPUB electronic book.
	EPUB
	// XLSX indicates a Microsoft Excel (.xlsx) spreadsheet.
	XLSX
	// PNG indicates a PNG image.
	PNG
	// JPEG indicates a JPEG image.
	JPEG
	// GIF indicates a GIF image.
	GIF
	// TIFF indicates a TIFF image.
	TIFF
	// BMP indicates a BMP image.
	BMP
	// WEBP indicates a WebP image.
	WEBP
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case Pagina:
		return "Pagina"
	case HTML:
		return "HTML"
	case Markdown:
		return "Markdown"
	case EPUB:
		return "EPUB"
	case XLSX:
		return "XLSX"
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case GIF:
		return "GIF"
	case TIFF:
		return "TIFF"
	case BMP:
		return "BMP"
	case WEBP:
		return "WebP"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case Pagina:
		return ".pagina"
	case HTML:
		return ".html"
	case Markdown:
		return ".md"
	case EPUB:
		return ".epub"
	case XLSX:
		return ".xlsx"
	case PNG:
		return ".png"
	case JPEG:
		return ".jpg"
	case GIF:
		return ".gif"
	case TIFF:
		return ".tiff"
	case BMP:
		return ".bmp"
	case WEBP:
		return ".webp"
	default:
		return ""
	}
}

// IsImage reports whether the format is a raster image format.
func (f Format) IsImage() bool {
	switch f {
	case PNG, JPEG, GIF, TIFF, BMP, WEBP:
		return true
	}
	return false
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pagina":
		return Pagina
	case ".html", ".htm", ".xhtml":
		return HTML
	case ".md", ".markdown":
		return Markdown
	case ".epub":
		return EPUB
	case ".xlsx":
		return XLSX
	case ".png":
		return PNG
	case ".jpg", ".jpeg":
		return JPEG
	case ".gif":
		return GIF
	case ".tif", ".tiff":
		return TIFF
	case ".bmp":
		return BMP
	case ".webp":
		return WEBP
	default:
		return Unknown
	}
}

// DetectFromMagic checks file magic bytes to determine format.
// This provides more reliable detection than extension-based detection.
// Returns Unknown for ZIP archives — the container type can only be told
// apart by content, so callers should use DetectFromReader for those.
func DetectFromMagic(data []byte) Format {
	if len(data) < 4 {
		return Unknown
	}

	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return PNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return JPEG
	case bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a")):
		return GIF
	case bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*")):
		return TIFF
	case bytes.HasPrefix(data, []byte("BM")):
		return BMP
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return WEBP
	}

	// ZIP magic (Pagina, EPUB and XLSX are all ZIP archives): PK\x03\x04
	if data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04 {
		return Unknown
	}

	if detectHTMLMagic(data) {
		return HTML
	}

	return Unknown
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	// Trim leading whitespace
	start := 0
	for start < len(data) && (data[start] == ' ' || data[start] == '\t' || data[start] == '\n' || data[start] == '\r') {
		start++
	}
	if start >= len(data) {
		return false
	}
	data = data[start:]

	// Check for common HTML signatures (case-insensitive for DOCTYPE)
	upper := strings.ToUpper(string(data))
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") {
		return true
	}
	if strings.HasPrefix(upper, "<HTML") {
		return true
	}
	// XML declaration followed by html-like content could be XHTML
	if strings.HasPrefix(upper, "<?XML") && strings.Contains(upper[:min(500, len(upper))], "<HTML") {
		return true
	}

	return false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// DetectFromReader inspects the content to determine format.
// This is more reliable than extension-based detection and can
// distinguish between the ZIP-based containers (Pagina, EPUB, XLSX).
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	// ZIP archives need their contents inspected
	if len(magic) >= 4 && magic[0] == 0x50 && magic[1] == 0x4B && magic[2] == 0x03 && magic[3] == 0x04 {
		return detectZIPFormat(r, size)
	}

	return DetectFromMagic(magic), nil
}

// detectZIPFormat inspects a ZIP archive to tell Pagina, EPUB and XLSX
// containers apart.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	// Containers with a mimetype entry declare themselves outright
	for _, f := range zr.File {
		if f.Name != "mimetype" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		data := make([]byte, 256)
		n, _ := rc.Read(data)
		rc.Close()
		mimeType := string(data[:n])
		switch {
		case strings.Contains(mimeType, "application/vnd.pagina.document"):
			return Pagina, nil
		case strings.Contains(mimeType, "application/epub+zip"):
			return EPUB, nil
		}
	}

	// Office Open XML and EPUB structural markers
	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "xl/"):
			return XLSX, nil
		case f.Name == "META-INF/container.xml":
			// an EPUB missing its mimetype entry, tolerated by most readers
			return EPUB, nil
		}
	}

	return Unknown, nil
}
