// Package pagina reads, paginates, and writes word-processing documents.
// A document saved through this package carries a layout cache — persisted
// page-break hints and floating-object positions — so reopening it can
// rebuild the page tree without recomputing every break decision.
//
// Basic usage:
//
//	f, err := pagina.Open("report.pagina")
//	if err != nil {
//	    // handle error
//	}
//	if len(f.Warnings) > 0 {
//	    log.Println("Warnings:", pagina.FormatWarnings(f.Warnings))
//	}
//	result, err := pagina.Paginate(f.Document, f.Cache, pagina.DefaultLayoutOptions())
//
// Importing foreign formats:
//
//	doc, err := pagina.Import("notes.md")
//	if err != nil {
//	    // handle error
//	}
//	result, err := pagina.Paginate(doc, nil, pagina.DefaultLayoutOptions())
//	err = pagina.Save("notes.pagina", doc, result)
//
// For advanced use cases the lower-level layout, pagecache, and docfile
// packages are also available.
package pagina

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsawler/pagina/docfile"
	"github.com/tsawler/pagina/epubdoc"
	"github.com/tsawler/pagina/format"
	"github.com/tsawler/pagina/htmldoc"
	"github.com/tsawler/pagina/images"
	"github.com/tsawler/pagina/layout"
	"github.com/tsawler/pagina/mddoc"
	"github.com/tsawler/pagina/model"
	"github.com/tsawler/pagina/pagecache"
	"github.com/tsawler/pagina/xlsx"
)

// Warning is a non-fatal problem reported while opening a document.
type Warning = docfile.Warning

// FormatWarnings joins warnings into a one-per-line display string.
func FormatWarnings(warnings []Warning) string {
	return docfile.FormatWarnings(warnings)
}

// Open reads a document container from a file. The returned File carries
// the document, its layout cache when one was stored and still matches the
// body, and warnings for anything that was degraded on the way in.
//
// Example:
//
//	f, err := pagina.Open("report.pagina")
func Open(path string) (*docfile.File, error) {
	return docfile.Open(path)
}

// Import reads a document in any supported format and converts it to the
// document model. The format is detected from the file extension, falling
// back to content sniffing when the extension is unrecognized. Supported
// formats: Pagina containers, HTML, Markdown, EPUB, XLSX spreadsheets, and
// raster images (which become a single-page document holding the image as
// a floating object).
//
// Importing a Pagina container discards its layout cache; use Open to keep
// the cache.
func Import(path string) (*model.Document, error) {
	kind := format.Detect(path)
	if kind == format.Unknown {
		var err error
		kind, err = sniff(path)
		if err != nil {
			return nil, fmt.Errorf("importing %s: %w", path, err)
		}
	}

	switch {
	case kind == format.Pagina:
		f, err := docfile.Open(path)
		if err != nil {
			return nil, err
		}
		return f.Document, nil
	case kind == format.HTML:
		return htmldoc.Open(path)
	case kind == format.Markdown:
		return mddoc.Open(path)
	case kind == format.EPUB:
		return epubdoc.Open(path)
	case kind == format.XLSX:
		return xlsx.Open(path)
	case kind.IsImage():
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return images.Document(filepath.Base(path), data)
	}
	return nil, fmt.Errorf("importing %s: unrecognized format", path)
}

// sniff determines the format from file content when the extension says
// nothing.
func sniff(path string) (format.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return format.Unknown, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return format.Unknown, err
	}
	return format.DetectFromReader(f, info.Size())
}

// Paginate lays out doc into pages. When cache is non-nil, page boundaries
// and floating-object positions recorded by a previous pass are reused
// wherever they still match the content; stale hints are skipped silently.
// A nil cache paginates from scratch.
//
// Example:
//
//	result, err := pagina.Paginate(f.Document, f.Cache, pagina.DefaultLayoutOptions())
func Paginate(doc *model.Document, cache *pagecache.Store, opts LayoutOptions) (*layout.Result, error) {
	return layout.NewPaginatorWithConfig(opts.config()).PaginateWithCache(doc, cache)
}

// Save writes doc to path as a document container. When result is non-nil,
// a layout cache built from its page tree is embedded so the next Open can
// reuse the break decisions. A nil result saves the document uncached.
//
// Example:
//
//	result, _ := pagina.Paginate(doc, nil, pagina.DefaultLayoutOptions())
//	err := pagina.Save("report.pagina", doc, result)
func Save(path string, doc *model.Document, result *layout.Result) error {
	var store *pagecache.Store
	if result != nil {
		store = layout.BuildCache(result.Pages)
	}
	return docfile.Save(path, doc, store)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	doc := pagina.Must(pagina.Import("notes.md"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
