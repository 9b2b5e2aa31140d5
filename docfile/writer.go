package docfile

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"

	"github.com/tsawler/pagina/model"
	"github.com/tsawler/pagina/pagecache"
)

// MimeType identifies the Pagina document container. It is the content
// of the archive's first, stored entry.
const MimeType = "application/vnd.pagina.document"

// Save writes a document, and optionally its layout cache, to a container
// file at path. A nil store writes a container without a layout-cache
// entry.
func Save(path string, doc *model.Document, store *pagecache.Store) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, doc, store); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write writes a document container to w.
func Write(w io.Writer, doc *model.Document, store *pagecache.Store) error {
	if doc == nil || doc.Body == nil {
		return fmt.Errorf("writing document: document has no body")
	}
	refs := mediaRefs(doc)
	content, err := marshalContent(doc, refs)
	if err != nil {
		return fmt.Errorf("encoding content: %w", err)
	}

	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	// mimetype must come first and stay uncompressed so sniffers can
	// identify the container from the raw bytes
	mw, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return fmt.Errorf("writing mimetype: %w", err)
	}
	if _, err := mw.Write([]byte(MimeType)); err != nil {
		return fmt.Errorf("writing mimetype: %w", err)
	}

	cw, err := zw.Create("content.xml")
	if err != nil {
		return fmt.Errorf("writing content: %w", err)
	}
	if _, err := cw.Write(content); err != nil {
		return fmt.Errorf("writing content: %w", err)
	}

	for i, obj := range doc.Objects {
		if refs[i] == "" {
			continue
		}
		ow, err := zw.Create(refs[i])
		if err != nil {
			return fmt.Errorf("writing %s: %w", refs[i], err)
		}
		if _, err := ow.Write(obj.Data); err != nil {
			return fmt.Errorf("writing %s: %w", refs[i], err)
		}
	}

	if store != nil {
		blob, err := store.MarshalBinary()
		if err != nil {
			return fmt.Errorf("encoding layout cache: %w", err)
		}
		lw, err := zw.Create("layout-cache")
		if err != nil {
			return fmt.Errorf("writing layout cache: %w", err)
		}
		if _, err := lw.Write(blob); err != nil {
			return fmt.Errorf("writing layout cache: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

// mediaRefs assigns an archive entry name to every object that carries
// data, aligned with doc.Objects. Objects without data get "".
func mediaRefs(doc *model.Document) []string {
	refs := make([]string, len(doc.Objects))
	for i, obj := range doc.Objects {
		if len(obj.Data) > 0 {
			refs[i] = fmt.Sprintf("media/object%d", i+1)
		}
	}
	return refs
}
