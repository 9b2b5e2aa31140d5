package formula

import (
	"testing"

	"github.com/tsawler/pagina/model"
)

func makeTable(rows ...[]string) *model.Table {
	tbl := &model.Table{}
	for _, cells := range rows {
		tbl.Rows = append(tbl.Rows, model.TableRow{Cells: cells})
	}
	return tbl
}

func TestEvaluate_Sum(t *testing.T) {
	tbl := makeTable(
		[]string{"Item", "Cost"},
		[]string{"Widget", "120"},
		[]string{"Gadget", "80"},
		[]string{"Total", "=SUM(B2:B3)"},
	)

	Evaluate(tbl)

	if got := tbl.Cell(3, 1); got != "200" {
		t.Errorf("Total = %q, want '200'", got)
	}
}

func TestEvaluate_Arithmetic(t *testing.T) {
	tbl := makeTable(
		[]string{"10", "5"},
		[]string{"=A1*2+B1", "=A1/B1"},
	)

	Evaluate(tbl)

	if got := tbl.Cell(1, 0); got != "25" {
		t.Errorf("A1*2+B1 = %q, want '25'", got)
	}
	if got := tbl.Cell(1, 1); got != "2" {
		t.Errorf("A1/B1 = %q, want '2'", got)
	}
}

func TestEvaluate_FractionalResult(t *testing.T) {
	tbl := makeTable(
		[]string{"120", "80"},
		[]string{"=A1/B1", ""},
	)

	Evaluate(tbl)

	if got := tbl.Cell(1, 0); got != "1.5" {
		t.Errorf("Result = %q, want '1.5'", got)
	}
}

func TestEvaluate_Helpers(t *testing.T) {
	tbl := makeTable(
		[]string{"1", "2", "3"},
		[]string{"=AVERAGE(A1:C1)", "=MIN(A1:C1)", "=MAX(A1:C1)"},
		[]string{"=COUNT(A1:C1)", "", ""},
	)

	Evaluate(tbl)

	if got := tbl.Cell(1, 0); got != "2" {
		t.Errorf("AVERAGE = %q, want '2'", got)
	}
	if got := tbl.Cell(1, 1); got != "1" {
		t.Errorf("MIN = %q, want '1'", got)
	}
	if got := tbl.Cell(1, 2); got != "3" {
		t.Errorf("MAX = %q, want '3'", got)
	}
	if got := tbl.Cell(2, 0); got != "3" {
		t.Errorf("COUNT = %q, want '3'", got)
	}
}

func TestEvaluate_NonNumericRefIsZero(t *testing.T) {
	tbl := makeTable(
		[]string{"hello"},
		[]string{"=A1+5"},
	)

	Evaluate(tbl)

	if got := tbl.Cell(1, 0); got != "5" {
		t.Errorf("Result = %q, want '5' (text reads as 0)", got)
	}
}

func TestEvaluate_OutOfRangeRefIsZero(t *testing.T) {
	tbl := makeTable([]string{"=Z99+1"})

	Evaluate(tbl)

	if got := tbl.Cell(0, 0); got != "1" {
		t.Errorf("Result = %q, want '1'", got)
	}
}

func TestEvaluate_DocumentOrder(t *testing.T) {
	tbl := makeTable(
		[]string{"=1+1"},
		[]string{"=A1*3"},
	)

	Evaluate(tbl)

	if got := tbl.Cell(0, 0); got != "2" {
		t.Errorf("A1 = %q, want '2'", got)
	}
	if got := tbl.Cell(1, 0); got != "6" {
		t.Errorf("A2 = %q, want '6' (sees A1's result)", got)
	}
}

func TestEvaluate_ForwardReferenceReadsZero(t *testing.T) {
	// Single pass: A1 evaluates before A2, so A2's unevaluated formula
	// text reads as 0.
	tbl := makeTable(
		[]string{"=A2*2"},
		[]string{"=1+1"},
	)

	Evaluate(tbl)

	if got := tbl.Cell(0, 0); got != "0" {
		t.Errorf("A1 = %q, want '0'", got)
	}
	if got := tbl.Cell(1, 0); got != "2" {
		t.Errorf("A2 = %q, want '2'", got)
	}
}

func TestEvaluate_SyntaxErrorMarksCell(t *testing.T) {
	tbl := makeTable([]string{"=SUM(("})

	Evaluate(tbl)

	if got := tbl.Cell(0, 0); got != ErrorText {
		t.Errorf("Cell = %q, want %q", got, ErrorText)
	}
}

func TestEvaluate_DivisionByZeroMarksCell(t *testing.T) {
	tbl := makeTable([]string{"=1/0"})

	Evaluate(tbl)

	if got := tbl.Cell(0, 0); got != ErrorText {
		t.Errorf("Cell = %q, want %q", got, ErrorText)
	}
}

func TestEvaluate_LowercaseRefs(t *testing.T) {
	tbl := makeTable(
		[]string{"7"},
		[]string{"=a1*2"},
	)

	Evaluate(tbl)

	if got := tbl.Cell(1, 0); got != "14" {
		t.Errorf("Result = %q, want '14'", got)
	}
}

func TestEvaluate_Comparison(t *testing.T) {
	tbl := makeTable(
		[]string{"5", "3"},
		[]string{"=A1>B1", "=A1<B1"},
	)

	Evaluate(tbl)

	if got := tbl.Cell(1, 0); got != "TRUE" {
		t.Errorf("A1>B1 = %q, want 'TRUE'", got)
	}
	if got := tbl.Cell(1, 1); got != "FALSE" {
		t.Errorf("A1<B1 = %q, want 'FALSE'", got)
	}
}

func TestEvaluate_MathNamespace(t *testing.T) {
	tbl := makeTable([]string{"=Math.round(2.7)"})

	Evaluate(tbl)

	if got := tbl.Cell(0, 0); got != "3" {
		t.Errorf("Result = %q, want '3'", got)
	}
}

func TestEvaluate_PlainCellsUntouched(t *testing.T) {
	tbl := makeTable([]string{"Title", "42", ""})

	Evaluate(tbl)

	if tbl.Cell(0, 0) != "Title" || tbl.Cell(0, 1) != "42" || tbl.Cell(0, 2) != "" {
		t.Errorf("Plain cells changed: %v", tbl.Rows[0].Cells)
	}
}

func TestEvaluate_NilTable(t *testing.T) {
	Evaluate(nil) // must not panic
}

func TestEvaluator_Reuse(t *testing.T) {
	e := New()

	first := makeTable([]string{"2"}, []string{"=A1*10"})
	e.Evaluate(first)
	if got := first.Cell(1, 0); got != "20" {
		t.Errorf("First table = %q, want '20'", got)
	}

	second := makeTable([]string{"3"}, []string{"=A1*10"})
	e.Evaluate(second)
	if got := second.Cell(1, 0); got != "30" {
		t.Errorf("Second table = %q, want '30' (bindings must refresh)", got)
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"SUM(A1:B3)", "SUM(A1,B1,A2,B2,A3,B3)"},
		{"SUM(a1:a2)", "SUM(A1,A2)"},
		{"a1+b2", "A1+B2"},
		{"A1*2+B2", "A1*2+B2"},
		{"MAX(B3:B1)", "MAX(B1,B2,B3)"},
		{"Math.round(A1)", "Math.round(A1)"},
	}

	for _, tt := range tests {
		if got := translate(tt.expr); got != tt.want {
			t.Errorf("translate(%q) = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		ref string
		row int
		col int
		ok  bool
	}{
		{"A1", 0, 0, true},
		{"B3", 2, 1, true},
		{"Z1", 0, 25, true},
		{"AA10", 9, 26, true},
		{"A0", 0, 0, false},
		{"ABC", 0, 0, false},
		{"123", 0, 0, false},
	}

	for _, tt := range tests {
		row, col, ok := parseRef(tt.ref)
		if ok != tt.ok {
			t.Errorf("parseRef(%q) ok = %v, want %v", tt.ref, ok, tt.ok)
			continue
		}
		if ok && (row != tt.row || col != tt.col) {
			t.Errorf("parseRef(%q) = (%d, %d), want (%d, %d)", tt.ref, row, col, tt.row, tt.col)
		}
	}
}

func TestCellRef_RoundTrip(t *testing.T) {
	for _, ref := range []string{"A1", "B3", "Z9", "AA10", "AZ2", "BA7"} {
		row, col, ok := parseRef(ref)
		if !ok {
			t.Errorf("parseRef(%q) failed", ref)
			continue
		}
		if got := cellRef(row, col); got != ref {
			t.Errorf("cellRef(parseRef(%q)) = %q", ref, got)
		}
	}
}
