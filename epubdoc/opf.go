package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"path"
	"strings"
	"time"
)

// Package document errors.
var (
	ErrNoOPF      = errors.New("epub: missing package document (OPF)")
	ErrInvalidOPF = errors.New("epub: invalid package document")
	ErrEmptySpine = errors.New("epub: no content in spine")
)

// bookPackage is the parsed package document.
type bookPackage struct {
	meta     bookMeta
	manifest map[string]manifestItem // keyed by item ID
	spine    []spineRef
}

// bookMeta holds the Dublin Core fields the document model has a home
// for.
type bookMeta struct {
	title       string
	creators    []string
	description string
	subjects    []string
	date        string
	modified    time.Time
}

type manifestItem struct {
	href       string
	mediaType  string
	properties []string
}

type spineRef struct {
	idref  string
	linear bool
}

// XML shadow of the OPF format. Dublin Core elements arrive under
// their own namespace; matching on local names covers both EPUB 2 and
// EPUB 3.
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	Title       []dcElement `xml:"title"`
	Creator     []dcElement `xml:"creator"`
	Description []dcElement `xml:"description"`
	Subject     []dcElement `xml:"subject"`
	Date        []dcElement `xml:"date"`
	Meta        []opfMeta   `xml:"meta"`
}

type dcElement struct {
	Content string `xml:",chardata"`
}

type opfMeta struct {
	Property string `xml:"property,attr"`
	Value    string `xml:",chardata"`
}

type opfManifest struct {
	Items []opfItem `xml:"item"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfSpine struct {
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

// parseOPF reads the package document: Dublin Core metadata, the
// manifest of files, and the spine (reading order). The returned base
// directory anchors relative hrefs.
func parseOPF(zr *zip.Reader, opfPath string) (*bookPackage, string, error) {
	data, err := readFile(zr, opfPath)
	if err != nil {
		return nil, "", ErrNoOPF
	}

	var opf opfPackage
	if err := xml.Unmarshal(data, &opf); err != nil {
		return nil, "", ErrInvalidOPF
	}

	baseDir := path.Dir(opfPath)
	if baseDir == "." {
		baseDir = ""
	}

	pkg := &bookPackage{
		meta: bookMeta{
			title:       firstOf(opf.Metadata.Title),
			creators:    allOf(opf.Metadata.Creator),
			description: firstOf(opf.Metadata.Description),
			subjects:    allOf(opf.Metadata.Subject),
			date:        firstOf(opf.Metadata.Date),
		},
		manifest: make(map[string]manifestItem, len(opf.Manifest.Items)),
	}

	for _, m := range opf.Metadata.Meta {
		if m.Property == "dcterms:modified" {
			if t, err := time.Parse(time.RFC3339, strings.TrimSpace(m.Value)); err == nil {
				pkg.meta.modified = t
			}
		}
	}

	for _, it := range opf.Manifest.Items {
		pkg.manifest[it.ID] = manifestItem{
			href:       it.Href,
			mediaType:  it.MediaType,
			properties: strings.Fields(it.Properties),
		}
	}

	pkg.spine = make([]spineRef, 0, len(opf.Spine.ItemRefs))
	for _, ref := range opf.Spine.ItemRefs {
		pkg.spine = append(pkg.spine, spineRef{
			idref:  ref.IDRef,
			linear: ref.Linear != "no", // default is linear
		})
	}
	if len(pkg.spine) == 0 {
		return nil, "", ErrEmptySpine
	}

	return pkg, baseDir, nil
}

func firstOf(els []dcElement) string {
	if len(els) == 0 {
		return ""
	}
	return strings.TrimSpace(els[0].Content)
}

func allOf(els []dcElement) []string {
	var out []string
	for _, el := range els {
		if s := strings.TrimSpace(el.Content); s != "" {
			out = append(out, s)
		}
	}
	return out
}
