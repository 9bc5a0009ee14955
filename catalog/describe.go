package catalog

import (
	"fmt"
	"strings"

	"github.com/kr/text"
)

const wrapWidth = 80

// Describe renders the documentation block of a dataset: provenance, the
// report captured when it was last mined, references and a usage example.
func (c *Catalog) Describe(ds Dataset) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "The graph %s is automatically retrieved from the %s repository.\n",
		ds.Name, c.DisplayName(ds.Repository))

	if ds.Report != "" {
		b.WriteString(section("Report"))
		b.WriteString(text.Wrap("At the time of rendering (please see datetime below), the graph had the following characteristics:", wrapWidth))
		b.WriteString("\n\n")
		if ds.RenderedAt != "" {
			fmt.Fprintf(&b, "Datetime: %s\n\n", ds.RenderedAt)
		}
		b.WriteString(text.Wrap(ds.Report, wrapWidth))
		b.WriteString("\n")
	}

	refs, err := References(ds)
	if err != nil {
		return "", err
	}
	if refs != "" {
		b.WriteString(section("References"))
		b.WriteString("Please cite the following if you use the data:\n\n")
		b.WriteString(refs)
		b.WriteString("\n")
	}

	b.WriteString(section("Usage example"))
	b.WriteString(text.Indent(usage(ds), "    "))

	return b.String(), nil
}

func section(title string) string {
	return fmt.Sprintf("\n%s\n%s\n", title, strings.Repeat("-", 21))
}

func usage(ds Dataset) string {
	direction := ""
	if ds.Directed {
		direction = " --directed"
	}
	return fmt.Sprintf(`# Download the graph and print its report
graphminer fetch %[1]s%[2]s

# Same, as JSON, keeping the files under a custom cache directory
graphminer fetch %[1]s%[2]s --cache-path /data/graphs --json

# Override how the edge list is read
graphminer fetch %[1]s --arg default_weight=1.0
`, ds.Method, direction)
}
