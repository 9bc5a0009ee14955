package edgelist

import (
	"strconv"
	"strings"

	"github.com/teranos/graphminer/errors"
)

// Parameters describes how to read a graph's edge list and optional node
// list. Columns are addressed either by number or, for files with a header,
// by name; a name wins when both are set.
type Parameters struct {
	Name     string `toml:"name,omitempty" json:"name,omitempty"`
	EdgePath string `toml:"edge_path,omitempty" json:"edge_path,omitempty"`
	NodePath string `toml:"node_path,omitempty" json:"node_path,omitempty"`

	EdgeHeader    *bool  `toml:"edge_header,omitempty" json:"edge_header,omitempty"`
	NodeHeader    *bool  `toml:"node_header,omitempty" json:"node_header,omitempty"`
	EdgeSeparator string `toml:"edge_separator,omitempty" json:"edge_separator,omitempty"`
	NodeSeparator string `toml:"node_separator,omitempty" json:"node_separator,omitempty"`

	SourcesColumn      string `toml:"sources_column,omitempty" json:"sources_column,omitempty"`
	DestinationsColumn string `toml:"destinations_column,omitempty" json:"destinations_column,omitempty"`
	WeightsColumn      string `toml:"weights_column,omitempty" json:"weights_column,omitempty"`
	EdgeTypesColumn    string `toml:"edge_types_column,omitempty" json:"edge_types_column,omitempty"`
	NodesColumn        string `toml:"nodes_column,omitempty" json:"nodes_column,omitempty"`
	NodeTypesColumn    string `toml:"node_types_column,omitempty" json:"node_types_column,omitempty"`

	SourcesColumnNumber      *int `toml:"sources_column_number,omitempty" json:"sources_column_number,omitempty"`
	DestinationsColumnNumber *int `toml:"destinations_column_number,omitempty" json:"destinations_column_number,omitempty"`
	WeightsColumnNumber      *int `toml:"weights_column_number,omitempty" json:"weights_column_number,omitempty"`
	EdgeTypesColumnNumber    *int `toml:"edge_types_column_number,omitempty" json:"edge_types_column_number,omitempty"`
	NodesColumnNumber        *int `toml:"nodes_column_number,omitempty" json:"nodes_column_number,omitempty"`
	NodeTypesColumnNumber    *int `toml:"node_types_column_number,omitempty" json:"node_types_column_number,omitempty"`

	DefaultWeight *float64 `toml:"default_weight,omitempty" json:"default_weight,omitempty"`
}

// Merge returns p with every field set in over replacing the one in p
func (p Parameters) Merge(over Parameters) Parameters {
	out := p
	mergeString(&out.Name, over.Name)
	mergeString(&out.EdgePath, over.EdgePath)
	mergeString(&out.NodePath, over.NodePath)
	mergeString(&out.EdgeSeparator, over.EdgeSeparator)
	mergeString(&out.NodeSeparator, over.NodeSeparator)
	mergeString(&out.SourcesColumn, over.SourcesColumn)
	mergeString(&out.DestinationsColumn, over.DestinationsColumn)
	mergeString(&out.WeightsColumn, over.WeightsColumn)
	mergeString(&out.EdgeTypesColumn, over.EdgeTypesColumn)
	mergeString(&out.NodesColumn, over.NodesColumn)
	mergeString(&out.NodeTypesColumn, over.NodeTypesColumn)
	mergePtr(&out.EdgeHeader, over.EdgeHeader)
	mergePtr(&out.NodeHeader, over.NodeHeader)
	mergePtr(&out.SourcesColumnNumber, over.SourcesColumnNumber)
	mergePtr(&out.DestinationsColumnNumber, over.DestinationsColumnNumber)
	mergePtr(&out.WeightsColumnNumber, over.WeightsColumnNumber)
	mergePtr(&out.EdgeTypesColumnNumber, over.EdgeTypesColumnNumber)
	mergePtr(&out.NodesColumnNumber, over.NodesColumnNumber)
	mergePtr(&out.NodeTypesColumnNumber, over.NodeTypesColumnNumber)
	mergePtr(&out.DefaultWeight, over.DefaultWeight)
	return out
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergePtr[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

// Set assigns one parameter from its key=value text form, as given on the
// command line. Unknown keys are invalid requests.
func (p *Parameters) Set(key, value string) error {
	strs := map[string]*string{
		"name":                &p.Name,
		"edge_path":           &p.EdgePath,
		"node_path":           &p.NodePath,
		"edge_separator":      &p.EdgeSeparator,
		"node_separator":      &p.NodeSeparator,
		"sources_column":      &p.SourcesColumn,
		"destinations_column": &p.DestinationsColumn,
		"weights_column":      &p.WeightsColumn,
		"edge_types_column":   &p.EdgeTypesColumn,
		"nodes_column":        &p.NodesColumn,
		"node_types_column":   &p.NodeTypesColumn,
	}
	ints := map[string]**int{
		"sources_column_number":      &p.SourcesColumnNumber,
		"destinations_column_number": &p.DestinationsColumnNumber,
		"weights_column_number":      &p.WeightsColumnNumber,
		"edge_types_column_number":   &p.EdgeTypesColumnNumber,
		"nodes_column_number":        &p.NodesColumnNumber,
		"node_types_column_number":   &p.NodeTypesColumnNumber,
	}
	bools := map[string]**bool{
		"edge_header": &p.EdgeHeader,
		"node_header": &p.NodeHeader,
	}

	key = strings.TrimSpace(key)
	if dst, ok := strs[key]; ok {
		if strings.HasSuffix(key, "_separator") {
			value = unescapeSeparator(value)
		}
		*dst = value
		return nil
	}
	if dst, ok := ints[key]; ok {
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return errors.NewInvalidRequestError("%s must be a non-negative integer, got %q", key, value)
		}
		*dst = &n
		return nil
	}
	if dst, ok := bools[key]; ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.NewInvalidRequestError("%s must be a boolean, got %q", key, value)
		}
		*dst = &b
		return nil
	}
	if key == "default_weight" {
		w, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return errors.NewInvalidRequestError("default_weight must be a number, got %q", value)
		}
		p.DefaultWeight = &w
		return nil
	}
	return errors.NewInvalidRequestError("unknown graph argument %q", key)
}

// ParseArguments builds Parameters from key=value pairs
func ParseArguments(pairs []string) (Parameters, error) {
	var p Parameters
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return p, errors.NewInvalidRequestError("argument %q is not key=value", pair)
		}
		if err := p.Set(key, value); err != nil {
			return p, err
		}
	}
	return p, nil
}

func unescapeSeparator(s string) string {
	switch s {
	case `\t`, "tab":
		return "\t"
	case "space":
		return " "
	}
	return s
}
