package htmldoc

import (
	"regexp"

	"golang.org/x/net/html"
)

// boilerplatePattern matches class and id values used for page chrome:
// navigation bars, menus, breadcrumbs, site headers and footers,
// sidebars and widget areas. Word-boundary anchoring keeps content
// classes like "navigate-guide" from matching.
var boilerplatePattern = regexp.MustCompile(
	`(?i)(^|[^a-z])(nav|navbar|navigation|menu|topnav|sidenav|breadcrumb|breadcrumbs|` +
		`site-header|page-header|masthead|banner|site-footer|page-footer|colophon|` +
		`sidebar|widget|widget-area)([^a-z]|$)`)

// isBoilerplate reports whether an element is page chrome rather than
// document content. Semantic tags are trusted outright; for generic
// containers the class and id attributes are matched against known
// chrome naming.
func isBoilerplate(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "nav", "aside":
		return true
	case "header", "footer":
		// only top-of-page chrome, not <header> inside an <article>
		return !insideArticle(n)
	}
	if cls := attr(n, "class"); cls != "" && boilerplatePattern.MatchString(cls) {
		return true
	}
	if id := attr(n, "id"); id != "" && boilerplatePattern.MatchString(id) {
		return true
	}
	return false
}

func insideArticle(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && (p.Data == "article" || p.Data == "section") {
			return true
		}
	}
	return false
}
