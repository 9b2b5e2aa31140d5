package epubdoc

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tsawler/pagina/model"
)

const testContainer = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testOPF = `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>The Test Book</dc:title>
    <dc:creator>Alice Author</dc:creator>
    <dc:creator>Bob Author</dc:creator>
    <dc:description>A book assembled for tests.</dc:description>
    <dc:subject>testing</dc:subject>
    <dc:subject>layout</dc:subject>
    <dc:date>2020-03-15</dc:date>
    <meta property="dcterms:modified">2021-06-01T12:00:00Z</meta>
  </metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="ch2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`

const testNav = `<html><body>
<nav epub:type="toc">
  <ol>
    <li><a href="ch1.xhtml">Getting Started</a></li>
    <li><a href="ch2.xhtml#top">Going Further</a></li>
  </ol>
</nav>
</body></html>`

const testCh1 = `<html><head><title>Chapter One</title></head>
<body><h1>One</h1><p>First chapter text.</p></body></html>`

const testCh2 = `<html><head><title>Chapter Two</title></head>
<body><p>Second chapter text.</p><img src="fig.png" alt="figure"/></body></html>`

// testEntries returns a complete two-chapter EPUB; tests mutate the
// map before building.
func testEntries() map[string]string {
	return map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": testContainer,
		"OEBPS/content.opf":      testOPF,
		"OEBPS/nav.xhtml":        testNav,
		"OEBPS/ch1.xhtml":        testCh1,
		"OEBPS/ch2.xhtml":        testCh2,
	}
}

// buildEPUB assembles an archive in memory, writing the mimetype entry
// first and uncompressed the way conforming packagers do.
func buildEPUB(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if mt, ok := entries["mimetype"]; ok {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
		if err != nil {
			t.Fatalf("Failed to create mimetype entry: %v", err)
		}
		w.Write([]byte(mt))
	}
	for name, content := range entries {
		if name == "mimetype" {
			continue
		}
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
		w.Write([]byte(content))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close archive: %v", err)
	}
	return buf.Bytes()
}

func openEntries(t *testing.T, entries map[string]string) (*model.Document, error) {
	t.Helper()
	data := buildEPUB(t, entries)
	return OpenReader(bytes.NewReader(data), int64(len(data)))
}

func TestOpenReader_TwoChapters(t *testing.T) {
	doc, err := openEntries(t, testEntries())
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}

	nodes := doc.Body.Nodes()
	if len(nodes) != 2 {
		t.Fatalf("Expected 2 sections, got %d nodes", len(nodes))
	}

	s1, ok := nodes[0].(*model.Section)
	if !ok {
		t.Fatalf("First node is %T, want *model.Section", nodes[0])
	}
	if s1.Name != "Getting Started" {
		t.Errorf("Section 1 name = %q, want 'Getting Started' (nav label)", s1.Name)
	}
	if len(s1.Nodes) != 2 {
		t.Fatalf("Section 1 has %d nodes, want 2", len(s1.Nodes))
	}
	if h := s1.Nodes[0].(*model.Paragraph); h.Style.OutlineLevel != 1 {
		t.Errorf("First chapter heading OutlineLevel = %d, want 1", h.Style.OutlineLevel)
	}

	s2 := nodes[1].(*model.Section)
	if s2.Name != "Going Further" {
		t.Errorf("Section 2 name = %q, want 'Going Further'", s2.Name)
	}
	if len(s2.Nodes) != 1 {
		t.Fatalf("Section 2 has %d nodes, want 1", len(s2.Nodes))
	}

	if doc.Body.FlowLen() != 3 {
		t.Errorf("FlowLen() = %d, want 3", doc.Body.FlowLen())
	}
}

func TestOpenReader_ObjectAnchorsRebased(t *testing.T) {
	doc, err := openEntries(t, testEntries())
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}

	if len(doc.Objects) != 1 {
		t.Fatalf("Expected 1 object, got %d", len(doc.Objects))
	}
	obj := doc.Objects[0]
	if obj.Name != "figure" {
		t.Errorf("Object name = %q, want 'figure'", obj.Name)
	}
	// Chapter one contributes flow offsets 0-1, so the image anchored
	// to chapter two's paragraph lands at offset 2.
	if obj.Anchor != 2 {
		t.Errorf("Anchor = %d, want 2", obj.Anchor)
	}
}

func TestOpenReader_Metadata(t *testing.T) {
	doc, err := openEntries(t, testEntries())
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}

	if doc.Meta.Title != "The Test Book" {
		t.Errorf("Title = %q, want 'The Test Book'", doc.Meta.Title)
	}
	if doc.Meta.Author != "Alice Author, Bob Author" {
		t.Errorf("Author = %q, want joined creators", doc.Meta.Author)
	}
	if doc.Meta.Subject != "A book assembled for tests." {
		t.Errorf("Subject = %q", doc.Meta.Subject)
	}
	if len(doc.Meta.Keywords) != 2 || doc.Meta.Keywords[0] != "testing" {
		t.Errorf("Keywords = %v, want [testing layout]", doc.Meta.Keywords)
	}
	wantCreated := time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC)
	if !doc.Meta.CreationDate.Equal(wantCreated) {
		t.Errorf("CreationDate = %v, want %v", doc.Meta.CreationDate, wantCreated)
	}
	wantMod := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	if !doc.Meta.ModDate.Equal(wantMod) {
		t.Errorf("ModDate = %v, want %v", doc.Meta.ModDate, wantMod)
	}
}

func TestOpenReader_TitleFallsBackToChapterTitle(t *testing.T) {
	entries := testEntries()
	delete(entries, "OEBPS/nav.xhtml")

	doc, err := openEntries(t, entries)
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}

	s1 := doc.Body.Nodes()[0].(*model.Section)
	if s1.Name != "Chapter One" {
		t.Errorf("Section name = %q, want 'Chapter One' (from <title>)", s1.Name)
	}
}

func TestOpenReader_TitleFallsBackToHeading(t *testing.T) {
	entries := testEntries()
	delete(entries, "OEBPS/nav.xhtml")
	entries["OEBPS/ch1.xhtml"] = `<html><body><h1>One</h1><p>Text.</p></body></html>`

	doc, err := openEntries(t, entries)
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}

	s1 := doc.Body.Nodes()[0].(*model.Section)
	if s1.Name != "One" {
		t.Errorf("Section name = %q, want 'One' (first heading)", s1.Name)
	}
}

func TestOpenReader_NCXNavigation(t *testing.T) {
	entries := testEntries()
	delete(entries, "OEBPS/nav.xhtml")
	entries["OEBPS/content.opf"] = `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Old Style</dc:title>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="ch2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`
	entries["OEBPS/toc.ncx"] = `<?xml version="1.0"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="n1" playOrder="1">
      <navLabel><text>Part I</text></navLabel>
      <content src="ch1.xhtml"/>
      <navPoint id="n1a" playOrder="2">
        <navLabel><text>Detail</text></navLabel>
        <content src="ch1.xhtml#detail"/>
      </navPoint>
    </navPoint>
    <navPoint id="n2" playOrder="3">
      <navLabel><text>Part II</text></navLabel>
      <content src="ch2.xhtml"/>
    </navPoint>
  </navMap>
</ncx>`

	doc, err := openEntries(t, entries)
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}

	nodes := doc.Body.Nodes()
	if got := nodes[0].(*model.Section).Name; got != "Part I" {
		t.Errorf("Section 1 name = %q, want 'Part I'", got)
	}
	if got := nodes[1].(*model.Section).Name; got != "Part II" {
		t.Errorf("Section 2 name = %q, want 'Part II'", got)
	}
}

func TestOpenReader_InnerSectionsFlatten(t *testing.T) {
	entries := testEntries()
	entries["OEBPS/ch1.xhtml"] = `<html><body>
<section id="intro"><p>Inside a section.</p></section>
<p>Outside.</p>
</body></html>`

	doc, err := openEntries(t, entries)
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}

	s1 := doc.Body.Nodes()[0].(*model.Section)
	if len(s1.Nodes) != 2 {
		t.Fatalf("Expected 2 flattened nodes, got %d", len(s1.Nodes))
	}
	for i, n := range s1.Nodes {
		if _, ok := n.(*model.Paragraph); !ok {
			t.Errorf("Node %d is %T, want *model.Paragraph", i, n)
		}
	}
}

func TestOpenReader_DRMRightsFile(t *testing.T) {
	entries := testEntries()
	entries["META-INF/rights.xml"] = `<rights/>`

	_, err := openEntries(t, entries)
	if !errors.Is(err, ErrDRMProtected) {
		t.Errorf("Expected ErrDRMProtected, got %v", err)
	}
}

func TestOpenReader_ContentEncryptionRejected(t *testing.T) {
	entries := testEntries()
	entries["META-INF/encryption.xml"] = `<?xml version="1.0"?>
<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://www.w3.org/2001/04/xmlenc#aes128-cbc"/>
    <CipherData><CipherReference URI="OEBPS/ch1.xhtml"/></CipherData>
  </EncryptedData>
</encryption>`

	_, err := openEntries(t, entries)
	if !errors.Is(err, ErrDRMProtected) {
		t.Errorf("Expected ErrDRMProtected, got %v", err)
	}
}

func TestOpenReader_FontObfuscationTolerated(t *testing.T) {
	entries := testEntries()
	entries["META-INF/encryption.xml"] = `<?xml version="1.0"?>
<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://www.idpf.org/2008/embedding"/>
    <CipherData><CipherReference URI="OEBPS/fonts/serif.otf"/></CipherData>
  </EncryptedData>
</encryption>`

	doc, err := openEntries(t, entries)
	if err != nil {
		t.Fatalf("Font obfuscation should not be treated as DRM: %v", err)
	}
	if doc.Body.Len() != 2 {
		t.Errorf("Expected 2 sections, got %d", doc.Body.Len())
	}
}

func TestOpenReader_WrongMimetype(t *testing.T) {
	entries := testEntries()
	entries["mimetype"] = "text/plain"

	_, err := openEntries(t, entries)
	if !errors.Is(err, ErrInvalidMimetype) {
		t.Errorf("Expected ErrInvalidMimetype, got %v", err)
	}
}

func TestOpenReader_MissingMimetypeTolerated(t *testing.T) {
	entries := testEntries()
	delete(entries, "mimetype")

	doc, err := openEntries(t, entries)
	if err != nil {
		t.Fatalf("Missing mimetype should be tolerated: %v", err)
	}
	if doc.Meta.Title != "The Test Book" {
		t.Errorf("Title = %q", doc.Meta.Title)
	}
}

func TestOpenReader_MissingContainer(t *testing.T) {
	entries := testEntries()
	delete(entries, "META-INF/container.xml")

	_, err := openEntries(t, entries)
	if !errors.Is(err, ErrNoContainer) {
		t.Errorf("Expected ErrNoContainer, got %v", err)
	}
}

func TestOpenReader_EmptySpine(t *testing.T) {
	entries := testEntries()
	entries["OEBPS/content.opf"] = `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata><dc:title xmlns:dc="http://purl.org/dc/elements/1.1/">Empty</dc:title></metadata>
  <manifest><item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/></manifest>
  <spine></spine>
</package>`

	_, err := openEntries(t, entries)
	if !errors.Is(err, ErrEmptySpine) {
		t.Errorf("Expected ErrEmptySpine, got %v", err)
	}
}

func TestOpenReader_MissingChapterSkipped(t *testing.T) {
	entries := testEntries()
	delete(entries, "OEBPS/ch2.xhtml")

	doc, err := openEntries(t, entries)
	if err != nil {
		t.Fatalf("A missing chapter should be skipped, not fatal: %v", err)
	}
	if doc.Body.Len() != 1 {
		t.Errorf("Expected 1 section, got %d", doc.Body.Len())
	}
}

func TestOpenReader_NonLinearSkipped(t *testing.T) {
	entries := testEntries()
	entries["OEBPS/content.opf"] = `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>T</dc:title></metadata>
  <manifest>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="ch2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
    <itemref idref="ch2" linear="no"/>
  </spine>
</package>`

	doc, err := openEntries(t, entries)
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}
	if doc.Body.Len() != 1 {
		t.Errorf("Expected 1 section (non-linear skipped), got %d", doc.Body.Len())
	}
}

func TestOpenReader_NotAnArchive(t *testing.T) {
	data := []byte("this is not a zip file at all")
	_, err := OpenReader(bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, ErrInvalidArchive) {
		t.Errorf("Expected ErrInvalidArchive, got %v", err)
	}
}

func TestOpen_File(t *testing.T) {
	data := buildEPUB(t, testEntries())
	tmp := filepath.Join(t.TempDir(), "book.epub")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	doc, err := Open(tmp)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if doc.Body.Len() != 2 {
		t.Errorf("Expected 2 sections, got %d", doc.Body.Len())
	}
}

func TestOpen_NotFound(t *testing.T) {
	_, err := Open("/nonexistent/book.epub")
	if !errors.Is(err, ErrInvalidArchive) {
		t.Errorf("Expected ErrInvalidArchive, got %v", err)
	}
}
