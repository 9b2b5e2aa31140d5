// Package epubdoc imports EPUB books into the pagina content model.
//
// Both EPUB 2 and EPUB 3 containers are understood: the OCF container
// points at the package document, whose spine lists the content files
// in reading order. Each spine chapter is parsed as HTML and wrapped
// in a section named from the book's navigation. DRM-protected books
// are refused outright; font obfuscation is tolerated.
package epubdoc

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/tsawler/pagina/htmldoc"
	"github.com/tsawler/pagina/model"
)

// Archive-level errors.
var (
	ErrInvalidArchive  = errors.New("epub: invalid or corrupted archive")
	ErrInvalidMimetype = errors.New("epub: mimetype is not application/epub+zip")
)

// Open reads an EPUB file into a document.
func Open(filename string) (*model.Document, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, ErrInvalidArchive
	}
	defer zr.Close()

	return buildDocument(&zr.Reader)
}

// OpenReader reads an EPUB from an io.ReaderAt.
func OpenReader(ra io.ReaderAt, size int64) (*model.Document, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, ErrInvalidArchive
	}
	return buildDocument(zr)
}

func buildDocument(zr *zip.Reader) (*model.Document, error) {
	if err := validateMimetype(zr); err != nil {
		return nil, err
	}
	if err := checkForDRM(zr); err != nil {
		return nil, err
	}

	opfPath, err := parseContainer(zr)
	if err != nil {
		return nil, err
	}
	pkg, baseDir, err := parseOPF(zr, opfPath)
	if err != nil {
		return nil, err
	}

	titles := chapterTitles(zr, pkg, baseDir)

	doc := model.NewDocument()
	doc.Meta = documentMeta(pkg.meta)

	loaded := 0
	for _, ref := range pkg.spine {
		if !ref.linear {
			continue
		}
		item, ok := pkg.manifest[ref.idref]
		if !ok {
			continue
		}
		href := resolveHref(baseDir, item.href)
		content, err := readFile(zr, href)
		if err != nil {
			continue
		}

		chapter, err := htmldoc.OpenReader(bytes.NewReader(content))
		if err != nil {
			continue
		}

		if appendChapter(doc, chapter, sectionTitle(titles, href, chapter)) {
			loaded++
		}
	}

	if loaded == 0 {
		return nil, ErrEmptySpine
	}
	return doc, nil
}

// validateMimetype rejects archives that declare a non-EPUB mimetype.
// Books missing the entry entirely are tolerated; plenty exist.
func validateMimetype(zr *zip.Reader) error {
	data, err := readFile(zr, "mimetype")
	if err != nil {
		return nil
	}
	if strings.TrimSpace(string(data)) != "application/epub+zip" {
		return ErrInvalidMimetype
	}
	return nil
}

// appendChapter splices one spine document into the book as a named
// section. Chapter-local float anchors shift by the flow content
// already in place; nested sections flatten so the wrapper stays one
// level deep.
func appendChapter(book, chapter *model.Document, title string) bool {
	var nodes []model.Node
	for _, node := range chapter.Body.Nodes() {
		if inner, ok := node.(*model.Section); ok {
			nodes = append(nodes, inner.Nodes...)
			continue
		}
		nodes = append(nodes, node)
	}
	if len(nodes) == 0 {
		return false
	}

	base := uint32(book.Body.FlowLen())
	book.Body.Append(&model.Section{Name: title, Nodes: nodes})
	for _, obj := range chapter.Objects {
		obj.Anchor += base
		book.AddObject(obj)
	}
	return true
}

// sectionTitle names a chapter section: the navigation label when the
// book's TOC has one, else the chapter's own <title>, else its first
// heading.
func sectionTitle(titles map[string]string, href string, chapter *model.Document) string {
	if t := titles[href]; t != "" {
		return t
	}
	if chapter.Meta.Title != "" {
		return chapter.Meta.Title
	}
	return firstHeading(chapter.Body)
}

func firstHeading(body *model.Body) string {
	for i := 0; i < body.FlowLen(); i++ {
		if p, ok := body.FlowNode(i).(*model.Paragraph); ok && p.Style.OutlineLevel > 0 {
			return p.Text
		}
	}
	return ""
}

func documentMeta(m bookMeta) model.Metadata {
	meta := model.Metadata{
		Title:    m.title,
		Author:   strings.Join(m.creators, ", "),
		Subject:  m.description,
		Keywords: m.subjects,
		ModDate:  m.modified,
	}
	if t, ok := parseBookDate(m.date); ok {
		meta.CreationDate = t
	}
	return meta
}

// dc:date values range from bare years to full timestamps.
func parseBookDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// resolveHref resolves a package href against the directory of the
// document that referenced it. Hrefs are URL-escaped and may carry a
// fragment.
func resolveHref(dir, href string) string {
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if dir == "" || dir == "." {
		return href
	}
	return path.Join(dir, href)
}

// readFile returns the named archive entry's contents.
func readFile(zr *zip.Reader, name string) ([]byte, error) {
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
	return nil, fmt.Errorf("epub: no %s in archive", name)
}
