// Package formula recalculates word-processor table formulas.
//
// A formula cell's text starts with "=" and references other cells in
// A1 notation: "=SUM(A1:B3)", "=A1*2+B2". The expression is translated
// to JavaScript (ranges expand to argument lists, references become
// bound variables) and evaluated in a goja runtime, so the full JS
// expression grammar and Math functions are available alongside the
// registered SUM, AVERAGE, MIN, MAX, and COUNT helpers. Referenced
// cells that do not hold a number evaluate as 0.
package formula

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"github.com/tsawler/pagina/model"
)

// ErrorText is written into a formula cell whose expression cannot be
// evaluated.
const ErrorText = "#ERROR!"

// Evaluator holds a JavaScript runtime with the table functions
// registered. It is reusable across tables but not safe for concurrent
// use.
type Evaluator struct {
	vm *goja.Runtime
}

// New creates an evaluator with SUM, AVERAGE, MIN, MAX, and COUNT
// registered.
func New() *Evaluator {
	vm := goja.New()

	vm.Set("SUM", func(values ...float64) float64 {
		total := 0.0
		for _, v := range values {
			total += v
		}
		return total
	})
	vm.Set("AVERAGE", func(values ...float64) float64 {
		if len(values) == 0 {
			return 0
		}
		total := 0.0
		for _, v := range values {
			total += v
		}
		return total / float64(len(values))
	})
	vm.Set("MIN", func(values ...float64) float64 {
		if len(values) == 0 {
			return 0
		}
		lo := values[0]
		for _, v := range values[1:] {
			if v < lo {
				lo = v
			}
		}
		return lo
	})
	vm.Set("MAX", func(values ...float64) float64 {
		if len(values) == 0 {
			return 0
		}
		hi := values[0]
		for _, v := range values[1:] {
			if v > hi {
				hi = v
			}
		}
		return hi
	})
	vm.Set("COUNT", func(values ...float64) float64 {
		return float64(len(values))
	})

	return &Evaluator{vm: vm}
}

// Evaluate recalculates every cell whose text begins with "=", in
// row-major document order. Results replace the cell text immediately,
// so a formula referencing an earlier formula cell sees its result; a
// forward reference sees the unevaluated text and reads as 0. A cell
// whose expression fails to evaluate is marked with ErrorText.
func (e *Evaluator) Evaluate(table *model.Table) {
	if table == nil {
		return
	}
	for r := range table.Rows {
		for c := range table.Rows[r].Cells {
			text := table.Rows[r].Cells[c]
			if !strings.HasPrefix(text, "=") {
				continue
			}
			result, err := e.Eval(table, strings.TrimPrefix(text, "="))
			if err != nil {
				table.Rows[r].Cells[c] = ErrorText
				continue
			}
			table.Rows[r].Cells[c] = result
		}
	}
}

// Eval evaluates a single formula expression (without the leading "=")
// against the table's current cell values.
func (e *Evaluator) Eval(table *model.Table, expr string) (string, error) {
	js := translate(expr)
	e.bindRefs(table, js)

	val, err := e.vm.RunString(js)
	if err != nil {
		return "", fmt.Errorf("evaluating %q: %w", expr, err)
	}
	return formatValue(val), nil
}

// Evaluate recalculates every formula cell of the table with a fresh
// evaluator.
func Evaluate(table *model.Table) {
	New().Evaluate(table)
}

// bindRefs sets every cell reference appearing in the translated
// expression as a numeric variable in the runtime. References outside
// the table, and cells whose text is not a number, bind as 0.
func (e *Evaluator) bindRefs(table *model.Table, js string) {
	for _, ref := range refPattern.FindAllString(js, -1) {
		e.vm.Set(ref, cellNumber(table, ref))
	}
}

// cellNumber reads the numeric value of the referenced cell; anything
// that does not parse as a number is 0.
func cellNumber(table *model.Table, ref string) float64 {
	row, col, ok := parseRef(ref)
	if !ok {
		return 0
	}
	text := strings.TrimSpace(table.Cell(row, col))
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return v
}

// formatValue renders an evaluation result as cell text. Integral
// floats print without a decimal point; NaN and infinities mark a
// failed computation.
func formatValue(val goja.Value) string {
	switch x := val.Export().(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ErrorText
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return x
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
