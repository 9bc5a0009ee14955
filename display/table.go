package display

import (
	"io"

	"github.com/pterm/pterm"
)

// Table renders rows under a header line. Writer is optional; pterm's default
// output (stdout) is used when it is nil.
func Table(w io.Writer, header []string, rows [][]string) error {
	data := pterm.TableData{header}
	data = append(data, rows...)

	printer := pterm.DefaultTable.WithHasHeader().WithData(data)
	if w != nil {
		printer = printer.WithWriter(w)
	}
	return printer.Render()
}

// KeyValues renders two-column label/value pairs without a header
func KeyValues(w io.Writer, pairs [][2]string) error {
	data := make(pterm.TableData, 0, len(pairs))
	for _, p := range pairs {
		data = append(data, []string{pterm.Bold.Sprint(p[0]), p[1]})
	}

	printer := pterm.DefaultTable.WithData(data)
	if w != nil {
		printer = printer.WithWriter(w)
	}
	return printer.Render()
}
