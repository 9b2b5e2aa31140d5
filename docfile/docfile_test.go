package docfile

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tsawler/pagina/model"
	"github.com/tsawler/pagina/pagecache"
)

func sampleDocument() *model.Document {
	doc := model.NewDocument()
	doc.Meta.Title = "Quarterly Report"
	doc.Meta.Author = "Jordan Müller"
	doc.Meta.Subject = "Q3 figures"
	doc.Meta.Keywords = []string{"finance", "quarterly"}
	doc.Meta.Generator = "pagina-test"
	doc.Meta.CreationDate = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	doc.Meta.ModDate = time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC)

	heading := &model.Paragraph{Text: "Overview", Style: model.ParaStyle{
		OutlineLevel: 1,
		KeepWithNext: true,
	}}
	chapter := &model.Paragraph{Text: "Results", Style: model.ParaStyle{
		PageName: "chapter",
		Parity:   model.ParityOdd,
	}}
	table := &model.Table{HeaderRows: 1, Rows: []model.TableRow{
		{Cells: []string{"Region", "Revenue"}},
		{Cells: []string{"North", "1200"}},
		{Cells: []string{"South", "980"}},
	}}
	sec := &model.Section{Name: "annex", Nodes: []model.Node{
		&model.Paragraph{Text: "Detail one"},
		&model.Paragraph{Text: "Detail two", Style: model.ParaStyle{BreakBefore: true}},
	}}
	doc.Body.Append(heading, &model.Paragraph{Text: "Body text."}, chapter, table, sec)

	doc.AddObject(&model.FloatObject{
		Name: "chart", Kind: model.ObjectImage, Anchor: 3, Auto: true, Z: 2,
		Size: model.Size{W: 4320, H: 2880},
		Data: []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 1, 2, 3},
	})
	doc.AddObject(&model.FloatObject{
		Name: "stamp", Kind: model.ObjectShape, Anchor: 0, Auto: false,
		Pos: model.Point{X: 400, Y: 400}, Size: model.Size{W: 720, H: 720},
	})
	return doc
}

func TestRoundTripDocument(t *testing.T) {
	doc := sampleDocument()
	path := filepath.Join(t.TempDir(), "report.pagina")

	if err := Save(path, doc, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if len(f.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", f.Warnings)
	}
	if f.Cache != nil {
		t.Errorf("Expected no cache in a container saved without one")
	}
	got := f.Document.Meta
	if got.Title != doc.Meta.Title || got.Author != doc.Meta.Author ||
		got.Subject != doc.Meta.Subject || got.Generator != doc.Meta.Generator {
		t.Errorf("Metadata mismatch:\n got %+v\nwant %+v", got, doc.Meta)
	}
	if !reflect.DeepEqual(got.Keywords, doc.Meta.Keywords) {
		t.Errorf("Expected keywords %v, got %v", doc.Meta.Keywords, got.Keywords)
	}
	if !got.CreationDate.Equal(doc.Meta.CreationDate) || !got.ModDate.Equal(doc.Meta.ModDate) {
		t.Errorf("Expected dates %v/%v, got %v/%v",
			doc.Meta.CreationDate, doc.Meta.ModDate, got.CreationDate, got.ModDate)
	}
	if !reflect.DeepEqual(f.Document.Body.Nodes(), doc.Body.Nodes()) {
		t.Errorf("Body mismatch:\n got %+v\nwant %+v", f.Document.Body.Nodes(), doc.Body.Nodes())
	}
	if !reflect.DeepEqual(f.Document.Objects, doc.Objects) {
		t.Errorf("Objects mismatch:\n got %+v\nwant %+v", f.Document.Objects, doc.Objects)
	}
}

func TestRoundTripWithCache(t *testing.T) {
	doc := model.NewDocument()
	doc.Body.Append(
		&model.Paragraph{Text: "first"},
		&model.Paragraph{Text: "second"},
	)
	store := pagecache.New()
	store.AddBreak(pagecache.BreakRecord{
		Kind: pagecache.BreakParagraph, Offset: 1, Split: pagecache.SplitComplete,
	})
	store.AddFloat(pagecache.FloatRecord{Page: 1, Order: 0, X: 700, Y: 0, W: 300, H: 250})

	path := filepath.Join(t.TempDir(), "cached.pagina")
	if err := Save(path, doc, store); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if len(f.Warnings) != 0 {
		t.Fatalf("Expected no warnings, got %v", f.Warnings)
	}
	if f.Cache == nil {
		t.Fatalf("Expected the layout cache back")
	}
	if f.Cache.BreakCount() != 1 || f.Cache.FloatCount() != 1 {
		t.Errorf("Expected 1 break and 1 float, got %d and %d",
			f.Cache.BreakCount(), f.Cache.FloatCount())
	}
	if got := f.Cache.Break(0); got.Offset != 1 || got.Kind != pagecache.BreakParagraph {
		t.Errorf("Expected the break record back, got %+v", got)
	}
	if !f.Cache.Version().TrustsObjectSize() {
		t.Errorf("Expected a current-version cache to vouch for object sizes")
	}
}

func TestCorruptCacheDegrades(t *testing.T) {
	data := buildArchive(t, []archiveEntry{
		{"mimetype", MimeType, true},
		{"content.xml", `<?xml version="1.0" encoding="UTF-8"?>
<document><body><p>hello</p></body></document>`, false},
		{"layout-cache", "not a cache blob", false},
	})

	f, err := Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if f.Cache != nil {
		t.Errorf("Expected the corrupt cache dropped")
	}
	if len(f.Warnings) != 1 || f.Warnings[0].Code != WarnCacheUnreadable {
		t.Fatalf("Expected one unreadable-cache warning, got %v", f.Warnings)
	}
	if f.Document.Body.Len() != 1 {
		t.Errorf("Expected the document to survive, got %d nodes", f.Document.Body.Len())
	}
}

func TestInvalidCacheDegrades(t *testing.T) {
	doc := model.NewDocument()
	doc.Body.Append(&model.Paragraph{Text: "only"})
	store := pagecache.New()
	store.AddBreak(pagecache.BreakRecord{
		Kind: pagecache.BreakParagraph, Offset: 99, Split: pagecache.SplitComplete,
	})

	path := filepath.Join(t.TempDir(), "stale.pagina")
	if err := Save(path, doc, store); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if f.Cache != nil {
		t.Errorf("Expected the inconsistent cache dropped")
	}
	if len(f.Warnings) != 1 || f.Warnings[0].Code != WarnCacheInvalid {
		t.Fatalf("Expected one invalid-cache warning, got %v", f.Warnings)
	}
}

func TestOpenRejectsWrongMimetype(t *testing.T) {
	data := buildArchive(t, []archiveEntry{
		{"mimetype", "application/vnd.oasis.opendocument.text", true},
		{"content.xml", "<document/>", false},
	})
	if _, err := Read(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Fatalf("Expected an error for a foreign mimetype")
	}
}

func TestOpenRejectsMissingMimetype(t *testing.T) {
	data := buildArchive(t, []archiveEntry{
		{"content.xml", "<document/>", false},
	})
	if _, err := Read(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Fatalf("Expected an error for an archive without a mimetype")
	}
}

func TestMissingMediaWarns(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<document>
  <body><p>x</p></body>
  <objects>
    <object name="fig" kind="image" anchor="0" auto="true" w="100" h="100" media="media/gone"></object>
  </objects>
</document>`
	data := buildArchive(t, []archiveEntry{
		{"mimetype", MimeType, true},
		{"content.xml", content, false},
	})

	f, err := Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(f.Warnings) != 1 || f.Warnings[0].Code != WarnMissingMedia {
		t.Fatalf("Expected one missing-media warning, got %v", f.Warnings)
	}
	if len(f.Document.Objects) != 1 || f.Document.Objects[0].Data != nil {
		t.Errorf("Expected the object kept without data")
	}
}

func TestMimetypeEntryStoredFirst(t *testing.T) {
	var buf bytes.Buffer
	doc := model.NewDocument()
	doc.Body.Append(&model.Paragraph{Text: "hi"})
	if err := Write(&buf, doc, nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Expected a readable ZIP, got %v", err)
	}
	if len(zr.File) == 0 || zr.File[0].Name != "mimetype" {
		t.Fatalf("Expected mimetype as the first entry")
	}
	if zr.File[0].Method != zip.Store {
		t.Errorf("Expected the mimetype entry stored uncompressed")
	}
}

func TestFormatWarnings(t *testing.T) {
	warnings := []Warning{
		{Code: WarnCacheUnreadable, Message: "layout cache ignored: truncated"},
		{Code: WarnMissingMedia, Message: "object \"fig\": media entry missing"},
	}
	got := FormatWarnings(warnings)
	if !strings.Contains(got, "truncated") || !strings.Contains(got, "fig") {
		t.Errorf("Expected both messages, got %q", got)
	}
	if lines := strings.Split(got, "\n"); len(lines) != 2 {
		t.Errorf("Expected one line per warning, got %d", len(lines))
	}
	if FormatWarnings(nil) != "" {
		t.Errorf("Expected empty output for no warnings")
	}
}

type archiveEntry struct {
	name   string
	data   string
	stored bool
}

func buildArchive(t *testing.T, entries []archiveEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		var (
			w   io.Writer
			err error
		)
		if e.stored {
			w, err = zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Store})
		} else {
			w, err = zw.Create(e.name)
		}
		if err != nil {
			t.Fatalf("failed to create %s: %v", e.name, err)
		}
		if _, err := w.Write([]byte(e.data)); err != nil {
			t.Fatalf("failed to write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}
