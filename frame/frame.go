// Package frame loads delimited edge and node list files into typed columns.
//
// Column dtypes follow the inference rules graph files are usually checked
// against: a column is Int64 when every present cell is an integer, Float64
// when every present cell is numeric (or when integers are mixed with missing
// cells), and String otherwise. A column with no present cells is Float64.
package frame

import (
	"math"
	"strconv"
	"strings"
)

// DType is the inferred type of a column
type DType int

const (
	Int64 DType = iota
	Float64
	String
)

func (d DType) String() string {
	switch d {
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	default:
		return "string"
	}
}

// Column is a single typed column. Raw cell text is kept so String columns and
// previews can be rendered exactly as read.
type Column struct {
	Name   string
	DType  DType
	raw    []string
	na     []bool
	floats []float64
}

// Frame is a rectangular table of columns
type Frame struct {
	Columns []*Column
	// Separator the rows were split on, detected or given
	Separator string
	rows      int
}

// Len returns the number of rows
func (f *Frame) Len() int { return f.rows }

// Width returns the number of columns
func (f *Frame) Width() int { return len(f.Columns) }

// Col returns column i. It panics when i is out of range, like slice indexing.
func (f *Frame) Col(i int) *Column { return f.Columns[i] }

// ColumnIndex finds a column by header name
func (f *Frame) ColumnIndex(name string) (int, bool) {
	for i, c := range f.Columns {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// DTypes returns the dtype of every column, in order
func (f *Frame) DTypes() []DType {
	out := make([]DType, len(f.Columns))
	for i, c := range f.Columns {
		out[i] = c.DType
	}
	return out
}

// Preview returns the header plus at most n rows of raw cells
func (f *Frame) Preview(n int) [][]string {
	if n > f.rows {
		n = f.rows
	}
	out := make([][]string, 0, n+1)
	header := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		header[i] = c.Name
	}
	out = append(out, header)
	for r := 0; r < n; r++ {
		row := make([]string, len(f.Columns))
		for i, c := range f.Columns {
			if c.na[r] {
				row[i] = "NaN"
			} else {
				row[i] = c.raw[r]
			}
		}
		out = append(out, row)
	}
	return out
}

// Len returns the number of cells
func (c *Column) Len() int { return len(c.raw) }

// IsNA reports whether row r is missing
func (c *Column) IsNA(r int) bool { return c.na[r] }

// Raw returns the cell text of row r
func (c *Column) Raw(r int) string { return c.raw[r] }

// Float returns the numeric value of row r; NaN for missing or String cells
func (c *Column) Float(r int) float64 {
	if c.DType == String || c.na[r] {
		return math.NaN()
	}
	return c.floats[r]
}

// Int returns the integer value of row r. Only meaningful for Int64 columns.
func (c *Column) Int(r int) int64 {
	return int64(c.Float(r))
}

// AllNA reports whether every cell is missing
func (c *Column) AllNA() bool {
	for _, na := range c.na {
		if !na {
			return false
		}
	}
	return true
}

// AnyNA reports whether at least one cell is missing
func (c *Column) AnyNA() bool {
	for _, na := range c.na {
		if na {
			return true
		}
	}
	return false
}

// All reports whether pred holds for every cell. Missing cells never satisfy
// a numeric comparison, so any NA makes All false.
func (c *Column) All(pred func(float64) bool) bool {
	if c.DType == String {
		return false
	}
	for r := range c.raw {
		if c.na[r] || !pred(c.floats[r]) {
			return false
		}
	}
	return true
}

// Any reports whether pred holds for at least one present cell
func (c *Column) Any(pred func(float64) bool) bool {
	if c.DType == String {
		return false
	}
	for r := range c.raw {
		if !c.na[r] && pred(c.floats[r]) {
			return true
		}
	}
	return false
}

// AllEqual reports whether every cell equals v
func (c *Column) AllEqual(v float64) bool {
	return c.All(func(x float64) bool { return x == v })
}

// AnyLE reports whether some present cell is <= v
func (c *Column) AnyLE(v float64) bool {
	return c.Any(func(x float64) bool { return x <= v })
}

// Unique returns the distinct values in first-seen order. Missing cells count
// as one value, rendered "NaN". Numeric cells are compared by value, so "1"
// and "1.0" collapse in a Float64 column.
func (c *Column) Unique() []string {
	seen := make(map[string]struct{})
	var out []string
	for r := range c.raw {
		key := c.key(r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// IsUnique reports whether no value repeats
func (c *Column) IsUnique() bool {
	return len(c.Unique()) == c.Len()
}

// UniqueSet returns the distinct numeric values of a numeric column
func (c *Column) UniqueSet() map[float64]struct{} {
	out := make(map[float64]struct{})
	if c.DType == String {
		return out
	}
	for r := range c.raw {
		if !c.na[r] {
			out[c.floats[r]] = struct{}{}
		}
	}
	return out
}

func (c *Column) key(r int) string {
	if c.na[r] {
		return "NaN"
	}
	if c.DType == String {
		return c.raw[r]
	}
	return strconv.FormatFloat(c.floats[r], 'g', -1, 64)
}

var naValues = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "#N/A": {}, "<NA>": {}, "None": {},
}

func isNA(cell string) bool {
	_, ok := naValues[strings.TrimSpace(cell)]
	return ok
}

// newColumn infers the dtype of raw cells
func newColumn(name string, raw []string) *Column {
	c := &Column{
		Name:   name,
		raw:    raw,
		na:     make([]bool, len(raw)),
		floats: make([]float64, len(raw)),
	}

	allInt, allFloat, present, anyNA := true, true, 0, false
	for r, cell := range raw {
		cell = strings.TrimSpace(cell)
		raw[r] = cell
		if isNA(cell) {
			c.na[r] = true
			c.floats[r] = math.NaN()
			anyNA = true
			continue
		}
		present++
		if allInt {
			if v, err := strconv.ParseInt(cell, 10, 64); err == nil {
				c.floats[r] = float64(v)
				continue
			}
			allInt = false
		}
		if allFloat {
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				c.floats[r] = v
				continue
			}
			allFloat = false
		}
	}

	switch {
	case present == 0:
		c.DType = Float64
	case allInt && !anyNA:
		c.DType = Int64
	case allInt || allFloat:
		c.DType = Float64
	default:
		c.DType = String
		c.floats = nil
	}
	return c
}
