package xlsx

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCellRef parses a cell reference like "A1" or "AA100" into
// 0-indexed column and row numbers.
func ParseCellRef(ref string) (col, row int, err error) {
	if ref == "" {
		return 0, 0, fmt.Errorf("empty cell reference")
	}

	i := 0
	for i < len(ref) && isLetter(ref[i]) {
		i++
	}
	if i == 0 {
		return 0, 0, fmt.Errorf("invalid cell reference %q: no column letters", ref)
	}
	if i == len(ref) {
		return 0, 0, fmt.Errorf("invalid cell reference %q: no row number", ref)
	}

	col = ColumnToIndex(ref[:i])
	if col < 0 {
		return 0, 0, fmt.Errorf("invalid column: %s", ref[:i])
	}

	rowNum, err := strconv.Atoi(ref[i:])
	if err != nil || rowNum < 1 {
		return 0, 0, fmt.Errorf("invalid row: %s", ref[i:])
	}
	return col, rowNum - 1, nil
}

// ParseRangeRef parses a range reference like "A1:D10" into 0-indexed
// start and end coordinates.
func ParseRangeRef(ref string) (startCol, startRow, endCol, endRow int, err error) {
	parts := strings.Split(ref, ":")
	if len(parts) != 2 {
		return 0, 0, 0, 0, fmt.Errorf("invalid range reference: %s", ref)
	}

	startCol, startRow, err = ParseCellRef(parts[0])
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid range start: %w", err)
	}
	endCol, endRow, err = ParseCellRef(parts[1])
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid range end: %w", err)
	}
	return startCol, startRow, endCol, endRow, nil
}

// ColumnToIndex converts column letters to a 0-indexed column number:
// A=0, B=1, ..., Z=25, AA=26.
func ColumnToIndex(col string) int {
	col = strings.ToUpper(col)
	result := 0
	for _, c := range col {
		if c < 'A' || c > 'Z' {
			return -1
		}
		result = result*26 + int(c-'A') + 1
	}
	return result - 1
}

// IndexToColumn converts a 0-indexed column number to column letters:
// 0=A, 25=Z, 26=AA.
func IndexToColumn(index int) string {
	if index < 0 {
		return ""
	}
	result := ""
	index++
	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}

// CellRef builds a cell reference from 0-indexed column and row.
func CellRef(col, row int) string {
	return fmt.Sprintf("%s%d", IndexToColumn(col), row+1)
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
