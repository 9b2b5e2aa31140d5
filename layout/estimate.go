package layout

import "github.com/tsawler/pagina/model"

const (
	// estParagraphsPerPage is how many body paragraphs a default page is
	// assumed to hold.
	estParagraphsPerPage = 12
	// estTableDeduction compensates for rows packing tighter than
	// free-standing paragraphs.
	estTableDeduction = 2
	// estFloatDiscount reflects that floats overlay the flow instead of
	// consuming it.
	estFloatDiscount = 1
)

// EstimatePageCount returns a statistical page-count estimate for a
// document without a usable layout cache: paragraph and table-row counts
// against a per-page budget, with a fixed deduction per table and a fixed
// discount per floating object. The estimate sizes progress reporting and
// pre-allocation only — it never decides a page break — and is at least 1.
func EstimatePageCount(doc *model.Document) int {
	if doc == nil || doc.Body == nil {
		return 1
	}
	units := 0
	count := func(n model.Node) {
		switch el := n.(type) {
		case *model.Paragraph:
			units++
		case *model.Table:
			units += el.RowCount() - estTableDeduction
		}
	}
	for _, n := range doc.Body.Nodes() {
		if sec, ok := n.(*model.Section); ok {
			for _, inner := range sec.Nodes {
				count(inner)
			}
			continue
		}
		count(n)
	}
	units -= len(doc.Objects) * estFloatDiscount
	pages := (units + estParagraphsPerPage - 1) / estParagraphsPerPage
	if pages < 1 {
		pages = 1
	}
	return pages
}
