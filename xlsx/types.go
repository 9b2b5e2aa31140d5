package xlsx

import "encoding/xml"

// XML shadows of the workbook parts. Office writers vary in namespace
// prefixes; matching on local names covers them all.

// xl/workbook.xml
type workbookXML struct {
	XMLName xml.Name  `xml:"workbook"`
	Sheets  sheetsXML `xml:"sheets"`
}

type sheetsXML struct {
	Sheet []sheetRefXML `xml:"sheet"`
}

type sheetRefXML struct {
	Name string `xml:"name,attr"`
	RID  string `xml:"id,attr"` // r:id, the relationship to the sheet part
}

// xl/worksheets/sheet*.xml
type worksheetXML struct {
	XMLName    xml.Name       `xml:"worksheet"`
	SheetData  sheetDataXML   `xml:"sheetData"`
	MergeCells *mergeCellsXML `xml:"mergeCells"`
}

type sheetDataXML struct {
	Rows []rowXML `xml:"row"`
}

type rowXML struct {
	R     int       `xml:"r,attr"` // 1-indexed; some writers omit it
	Cells []cellXML `xml:"c"`
}

type cellXML struct {
	R  string        `xml:"r,attr"` // cell reference ("A1"); may be absent
	T  string        `xml:"t,attr"` // s, b, e, str, inlineStr, or empty for numbers
	V  string        `xml:"v"`
	F  string        `xml:"f"`  // formula source without the leading =
	Is *inlineStrXML `xml:"is"` // inline string
}

type inlineStrXML struct {
	T string   `xml:"t"`
	R []runXML `xml:"r"`
}

type mergeCellsXML struct {
	MergeCell []mergeCellXML `xml:"mergeCell"`
}

type mergeCellXML struct {
	Ref string `xml:"ref,attr"` // "A1:B2"
}

// xl/sharedStrings.xml
type sharedStringsXML struct {
	XMLName xml.Name `xml:"sst"`
	SI      []siXML  `xml:"si"`
}

type siXML struct {
	T string   `xml:"t"` // plain text
	R []runXML `xml:"r"` // rich text runs
}

type runXML struct {
	T string `xml:"t"`
}

// xl/_rels/workbook.xml.rels
type relationshipsXML struct {
	XMLName      xml.Name          `xml:"Relationships"`
	Relationship []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID     string `xml:"Id,attr"`
	Target string `xml:"Target,attr"`
}

// docProps/core.xml
type corePropertiesXML struct {
	XMLName  xml.Name `xml:"coreProperties"`
	Title    string   `xml:"title"`
	Subject  string   `xml:"subject"`
	Creator  string   `xml:"creator"`
	Keywords string   `xml:"keywords"`
	Created  string   `xml:"created"`
	Modified string   `xml:"modified"`
}

// docProps/app.xml
type appPropertiesXML struct {
	XMLName     xml.Name `xml:"Properties"`
	Application string   `xml:"Application"`
}
