package epubdoc

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// chapterTitles maps content paths to their navigation labels, read
// from the EPUB 3 nav document or the EPUB 2 NCX. Books without
// navigation get nil; section names then fall back to the chapters'
// own titles.
func chapterTitles(zr *zip.Reader, pkg *bookPackage, baseDir string) map[string]string {
	if item, ok := findNavDocument(pkg); ok {
		href := resolveHref(baseDir, item.href)
		if content, err := readFile(zr, href); err == nil {
			if labels := navLabels(content, path.Dir(href)); len(labels) > 0 {
				return labels
			}
		}
	}

	if item, ok := findNCX(pkg); ok {
		href := resolveHref(baseDir, item.href)
		if content, err := readFile(zr, href); err == nil {
			if labels := ncxLabels(content, path.Dir(href)); len(labels) > 0 {
				return labels
			}
		}
	}

	return nil
}

func findNavDocument(pkg *bookPackage) (manifestItem, bool) {
	for _, item := range pkg.manifest {
		for _, prop := range item.properties {
			if prop == "nav" {
				return item, true
			}
		}
	}
	return manifestItem{}, false
}

func findNCX(pkg *bookPackage) (manifestItem, bool) {
	for _, item := range pkg.manifest {
		if item.mediaType == "application/x-dtbncx+xml" {
			return item, true
		}
	}
	return manifestItem{}, false
}

// navLabels walks the anchors of an EPUB 3 nav document in order. The
// first label per content path wins, so a chapter keeps its top-level
// entry over deeper fragments.
func navLabels(content []byte, navDir string) map[string]string {
	root, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil
	}
	nav := findTOCNav(root)
	if nav == nil {
		return nil
	}

	labels := make(map[string]string)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := anchorAttr(n, "href")
			label := nodeText(n)
			if href != "" && label != "" {
				key := resolveHref(navDir, href)
				if _, seen := labels[key]; !seen {
					labels[key] = label
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(nav)
	return labels
}

// findTOCNav finds the <nav> marked epub:type="toc", falling back to
// the first <nav> in the document.
func findTOCNav(root *html.Node) *html.Node {
	var first, toc *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if toc != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "nav" {
			if first == nil {
				first = n
			}
			for _, a := range n.Attr {
				if (a.Key == "epub:type" || a.Key == "type") && strings.Contains(a.Val, "toc") {
					toc = n
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	if toc != nil {
		return toc
	}
	return first
}

func anchorAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// EPUB 2 NCX navigation document.
type ncxDocument struct {
	XMLName   xml.Name      `xml:"ncx"`
	NavPoints []ncxNavPoint `xml:"navMap>navPoint"`
}

type ncxNavPoint struct {
	Label    string        `xml:"navLabel>text"`
	Content  ncxContent    `xml:"content"`
	Children []ncxNavPoint `xml:"navPoint"`
}

type ncxContent struct {
	Src string `xml:"src,attr"`
}

func ncxLabels(content []byte, ncxDir string) map[string]string {
	var ncx ncxDocument
	if err := xml.Unmarshal(content, &ncx); err != nil {
		return nil
	}

	labels := make(map[string]string)
	var collect func([]ncxNavPoint)
	collect = func(points []ncxNavPoint) {
		for _, p := range points {
			label := strings.TrimSpace(p.Label)
			if src := p.Content.Src; src != "" && label != "" {
				key := resolveHref(ncxDir, src)
				if _, seen := labels[key]; !seen {
					labels[key] = label
				}
			}
			collect(p.Children)
		}
	}
	collect(ncx.NavPoints)
	return labels
}
