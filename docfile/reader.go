package docfile

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/tsawler/pagina/model"
	"github.com/tsawler/pagina/pagecache"
)

// File is an opened document container. Cache is nil when the container
// carried no usable layout cache; Warnings explains anything that was
// degraded on the way in.
type File struct {
	Document *model.Document
	Cache    *pagecache.Store
	Warnings []Warning
}

// Open reads a document container from a file. The file is fully
// materialized; nothing stays open after Open returns.
func Open(path string) (*File, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	defer zr.Close()
	return read(&zr.Reader)
}

// Read reads a document container from an in-memory or seekable source.
func Read(r io.ReaderAt, size int64) (*File, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	return read(zr)
}

func read(zr *zip.Reader) (*File, error) {
	mime, err := entryContent(zr, "mimetype")
	if err != nil {
		return nil, fmt.Errorf("not a pagina document: %w", err)
	}
	if string(mime) != MimeType {
		return nil, fmt.Errorf("not a pagina document: mimetype %q", string(mime))
	}

	content, err := entryContent(zr, "content.xml")
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	doc, media, err := unmarshalContent(content)
	if err != nil {
		return nil, err
	}

	f := &File{Document: doc}
	for i, ref := range media {
		if ref == "" || i >= len(doc.Objects) {
			continue
		}
		data, err := entryContent(zr, ref)
		if err != nil {
			f.Warnings = append(f.Warnings, Warning{
				Code:    WarnMissingMedia,
				Message: fmt.Sprintf("object %q: media entry %s: %v", doc.Objects[i].Name, ref, err),
			})
			continue
		}
		doc.Objects[i].Data = data
	}

	if blob, err := entryContent(zr, "layout-cache"); err == nil {
		f.Cache = loadCache(blob, doc.Body, &f.Warnings)
	}
	return f, nil
}

// loadCache decodes and validates the layout-cache blob. Any failure
// degrades to an uncached open with one warning; the cache is advisory
// and never worth failing an open over.
func loadCache(blob []byte, body *model.Body, warnings *[]Warning) *pagecache.Store {
	store, err := pagecache.Read(blob)
	if err != nil {
		*warnings = append(*warnings, Warning{
			Code:    WarnCacheUnreadable,
			Message: fmt.Sprintf("layout cache ignored: %v", err),
		})
		return nil
	}
	if err := pagecache.Validate(store, body); err != nil {
		*warnings = append(*warnings, Warning{
			Code:    WarnCacheInvalid,
			Message: fmt.Sprintf("layout cache ignored: %v", err),
		})
		return nil
	}
	return store
}

func entryContent(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file not found: %s", name)
}
