// Package xlsx imports Office Open XML spreadsheets into the pagina
// content model. Each worksheet becomes a named section holding one
// table; formula cells keep their "=" source text so they can be
// recalculated after import.
package xlsx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tsawler/pagina/model"
)

var (
	ErrInvalidArchive = errors.New("xlsx: invalid or corrupted archive")
	ErrNotSpreadsheet = errors.New("xlsx: not a spreadsheet archive")
	ErrNoSheets       = errors.New("xlsx: no sheet content")
)

// Open reads an XLSX file into a document.
func Open(filename string) (*model.Document, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, ErrInvalidArchive
	}
	defer zr.Close()

	return buildDocument(&zr.Reader)
}

// OpenReader reads an XLSX workbook from an io.ReaderAt.
func OpenReader(ra io.ReaderAt, size int64) (*model.Document, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, ErrInvalidArchive
	}
	return buildDocument(zr)
}

// workbook carries the parts shared across worksheets.
type workbook struct {
	zr            *zip.Reader
	sharedStrings []string
	rels          map[string]string // relationship ID -> part target
}

func buildDocument(zr *zip.Reader) (*model.Document, error) {
	if err := requireParts(zr); err != nil {
		return nil, err
	}

	wb := &workbook{zr: zr}
	wb.loadRels()
	wb.loadSharedStrings()

	data, err := readPart(zr, "xl/workbook.xml")
	if err != nil {
		return nil, ErrNotSpreadsheet
	}
	var book workbookXML
	if err := xml.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("xlsx: parsing workbook: %w", err)
	}

	doc := model.NewDocument()
	doc.Meta = wb.metadata()

	for i, ref := range book.Sheets.Sheet {
		data, err := readPart(zr, wb.sheetPart(ref.RID, i))
		if err != nil {
			continue
		}
		table, err := wb.sheetTable(data)
		if err != nil || table == nil {
			continue
		}
		doc.Body.Append(&model.Section{Name: ref.Name, Nodes: []model.Node{table}})
	}

	if doc.Body.Len() == 0 {
		return nil, ErrNoSheets
	}
	return doc, nil
}

// requireParts rejects archives that are missing the workbook skeleton.
func requireParts(zr *zip.Reader) error {
	have := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		have[f.Name] = true
	}
	for _, name := range []string{"[Content_Types].xml", "xl/workbook.xml"} {
		if !have[name] {
			return fmt.Errorf("%w: missing %s", ErrNotSpreadsheet, name)
		}
	}
	return nil
}

func (wb *workbook) loadRels() {
	wb.rels = make(map[string]string)
	data, err := readPart(wb.zr, "xl/_rels/workbook.xml.rels")
	if err != nil {
		return
	}
	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		return
	}
	for _, rel := range rels.Relationship {
		wb.rels[rel.ID] = rel.Target
	}
}

func (wb *workbook) loadSharedStrings() {
	data, err := readPart(wb.zr, "xl/sharedStrings.xml")
	if err != nil {
		return
	}
	var sst sharedStringsXML
	if err := xml.Unmarshal(data, &sst); err != nil {
		return
	}
	wb.sharedStrings = make([]string, len(sst.SI))
	for i, si := range sst.SI {
		wb.sharedStrings[i] = richText(si.T, si.R)
	}
}

// sheetPart resolves a sheet's archive path from its relationship,
// falling back to conventional naming.
func (wb *workbook) sheetPart(rid string, index int) string {
	target := wb.rels[rid]
	if target == "" {
		target = fmt.Sprintf("worksheets/sheet%d.xml", index+1)
	}
	target = strings.TrimPrefix(target, "/")
	if !strings.HasPrefix(target, "xl/") {
		target = "xl/" + target
	}
	return target
}

// sheetTable converts one worksheet into a table. Cell placement
// follows explicit references when present and flows sequentially when
// not; merged regions keep only their top-left text; empty outer rows
// and columns trim away. Sheets with no content return nil.
func (wb *workbook) sheetTable(data []byte) (*model.Table, error) {
	var ws worksheetXML
	if err := xml.Unmarshal(data, &ws); err != nil {
		return nil, err
	}

	type placed struct {
		row, col int
		text     string
	}
	var cells []placed
	maxRow, maxCol := -1, -1

	rowIdx := -1
	for _, row := range ws.SheetData.Rows {
		if row.R > 0 {
			rowIdx = row.R - 1
		} else {
			rowIdx++
		}
		colIdx := -1
		for _, c := range row.Cells {
			if col, _, err := ParseCellRef(c.R); err == nil {
				colIdx = col
			} else {
				colIdx++
			}
			text := wb.cellText(c)
			if text == "" {
				continue
			}
			cells = append(cells, placed{row: rowIdx, col: colIdx, text: text})
			if rowIdx > maxRow {
				maxRow = rowIdx
			}
			if colIdx > maxCol {
				maxCol = colIdx
			}
		}
	}
	if len(cells) == 0 {
		return nil, nil
	}

	grid := make([][]string, maxRow+1)
	for i := range grid {
		grid[i] = make([]string, maxCol+1)
	}
	for _, p := range cells {
		grid[p.row][p.col] = p.text
	}

	if ws.MergeCells != nil {
		for _, mc := range ws.MergeCells.MergeCell {
			c0, r0, c1, r1, err := ParseRangeRef(mc.Ref)
			if err != nil {
				continue
			}
			for r := r0; r <= r1 && r < len(grid); r++ {
				for c := c0; c <= c1 && c < len(grid[r]); c++ {
					if r == r0 && c == c0 {
						continue
					}
					grid[r][c] = ""
				}
			}
		}
	}

	grid = trimGrid(grid)
	if len(grid) == 0 {
		return nil, nil
	}

	table := &model.Table{Rows: make([]model.TableRow, len(grid))}
	for i, r := range grid {
		table.Rows[i] = model.TableRow{Cells: r}
	}
	if len(table.Rows) > 1 {
		table.HeaderRows = 1
	}
	return table, nil
}

// cellText resolves a cell's display text. A formula cell keeps its
// source, "=" prefixed, so recalculation can find it.
func (wb *workbook) cellText(c cellXML) string {
	if f := strings.TrimSpace(c.F); f != "" {
		return "=" + f
	}
	if c.V == "" && c.Is == nil {
		return ""
	}
	switch c.T {
	case "s":
		idx, err := strconv.Atoi(c.V)
		if err != nil || idx < 0 || idx >= len(wb.sharedStrings) {
			return ""
		}
		return wb.sharedStrings[idx]
	case "b":
		if c.V == "1" {
			return "TRUE"
		}
		return "FALSE"
	case "inlineStr":
		if c.Is == nil {
			return ""
		}
		return richText(c.Is.T, c.Is.R)
	default: // numbers, cached formula strings, error literals
		return c.V
	}
}

// richText concatenates rich-text runs; plain text wins when present.
func richText(t string, runs []runXML) string {
	if t != "" {
		return t
	}
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.T)
	}
	return sb.String()
}

// trimGrid drops empty outer rows and columns.
func trimGrid(grid [][]string) [][]string {
	minRow, maxRow := -1, -1
	minCol, maxCol := len(grid[0]), -1
	for r, row := range grid {
		for c, text := range row {
			if text == "" {
				continue
			}
			if minRow < 0 {
				minRow = r
			}
			maxRow = r
			if c < minCol {
				minCol = c
			}
			if c > maxCol {
				maxCol = c
			}
		}
	}
	if maxRow < 0 {
		return nil
	}
	out := make([][]string, 0, maxRow-minRow+1)
	for r := minRow; r <= maxRow; r++ {
		out = append(out, grid[r][minCol:maxCol+1])
	}
	return out
}

func (wb *workbook) metadata() model.Metadata {
	var meta model.Metadata
	if data, err := readPart(wb.zr, "docProps/core.xml"); err == nil {
		var core corePropertiesXML
		if xml.Unmarshal(data, &core) == nil {
			meta.Title = core.Title
			meta.Author = core.Creator
			meta.Subject = core.Subject
			for _, kw := range strings.Split(core.Keywords, ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					meta.Keywords = append(meta.Keywords, kw)
				}
			}
			if t, err := time.Parse(time.RFC3339, core.Created); err == nil {
				meta.CreationDate = t
			}
			if t, err := time.Parse(time.RFC3339, core.Modified); err == nil {
				meta.ModDate = t
			}
		}
	}
	if data, err := readPart(wb.zr, "docProps/app.xml"); err == nil {
		var app appPropertiesXML
		if xml.Unmarshal(data, &app) == nil {
			meta.Generator = app.Application
		}
	}
	return meta
}

// readPart returns the named archive entry's contents.
func readPart(zr *zip.Reader, name string) ([]byte, error) {
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
	return nil, fmt.Errorf("xlsx: no %s in archive", name)
}
