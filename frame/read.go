package frame

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/internal/util"
)

// Whitespace splits on runs of spaces and tabs
const Whitespace = "whitespace"

// Options controls how a file is split into columns
type Options struct {
	// Separator between cells. Empty means detect from the first data line:
	// tab, then comma, then whitespace.
	Separator string
	// Header takes column names from the first data line
	Header bool
	// Comments lists line prefixes to skip. Nil means "%" and "#".
	Comments []string
	// MatrixMarket skips the size line that follows the comment block.
	// Read sets it for .mtx files.
	MatrixMarket bool
	// MaxRows stops after this many data rows; 0 reads everything
	MaxRows int
}

var defaultComments = []string{"%", "#"}

// Read loads path, decompressing .gz transparently
func Read(path string, opts Options) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	var r io.Reader = f
	name := path
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "gunzip %s", path)
		}
		defer gz.Close()
		r = gz
		name = strings.TrimSuffix(path, ".gz")
	}

	if strings.HasSuffix(name, ".mtx") {
		opts.MatrixMarket = true
	}

	fr, err := Parse(r, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return fr, nil
}

// Parse reads delimited rows from r. Rows shorter than the widest row are
// padded with missing cells.
func Parse(r io.Reader, opts Options) (*Frame, error) {
	comments := opts.Comments
	if comments == nil {
		comments = defaultComments
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		header    []string
		rows      [][]string
		width     int
		sep       = opts.Separator
		skippedMM = !opts.MatrixMarket
		gotHeader = !opts.Header
	)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" || util.HasAnyPrefix(line, comments...) {
			continue
		}
		if !skippedMM {
			skippedMM = true
			continue
		}
		if sep == "" {
			sep = DetectSeparator(line)
		}
		cells := split(line, sep)

		if !gotHeader {
			header = cells
			gotHeader = true
			if len(cells) > width {
				width = len(cells)
			}
			continue
		}

		rows = append(rows, cells)
		if len(cells) > width {
			width = len(cells)
		}
		if opts.MaxRows > 0 && len(rows) >= opts.MaxRows {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan")
	}

	columns := make([]*Column, width)
	for i := 0; i < width; i++ {
		cells := make([]string, len(rows))
		for r, row := range rows {
			if i < len(row) {
				cells[r] = row[i]
			}
		}
		name := strconv.Itoa(i)
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		columns[i] = newColumn(name, cells)
	}

	return &Frame{Columns: columns, Separator: sep, rows: len(rows)}, nil
}

// DetectSeparator picks the separator of a sample line
func DetectSeparator(line string) string {
	switch {
	case strings.Contains(line, "\t"):
		return "\t"
	case strings.Contains(line, ","):
		return ","
	default:
		return Whitespace
	}
}

func split(line, sep string) []string {
	if sep == Whitespace || sep == " " {
		return strings.Fields(line)
	}
	return strings.Split(line, sep)
}
