// Package stringdb lists the per-organism protein interaction networks of
// the STRING database. Every organism ships one gzipped links file with a
// fixed header, so no sniffing is needed.
package stringdb

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/teranos/graphminer/am"
	"github.com/teranos/graphminer/catalog"
	"github.com/teranos/graphminer/edgelist"
	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/internal/httpclient"
	"github.com/teranos/graphminer/internal/util"
	"github.com/teranos/graphminer/logger"
	"github.com/teranos/graphminer/repository"
)

const (
	Name        = "string"
	DisplayName = "STRING"

	TaxonColumn = "taxon_id"
	NameColumn  = "official_name_NCBI"

	citationKey = "szklarczyk2019string"
)

// Arguments is the layout shared by every STRING links file
var Arguments = edgelist.Parameters{
	EdgeHeader:         util.Ptr(true),
	EdgeSeparator:      " ",
	SourcesColumn:      "protein1",
	DestinationsColumn: "protein2",
	WeightsColumn:      "combined_score",
}

// Options configures a Repository. Empty fields take the am defaults.
type Options struct {
	Client     *httpclient.SaferClient
	Version    string
	SpeciesURL string
	LinksURL   string
}

// Repository implements repository.GraphRepository for STRING
type Repository struct {
	client     *httpclient.SaferClient
	version    string
	speciesURL string
	linksURL   string
	logger     *zap.SugaredLogger
}

var _ repository.GraphRepository = (*Repository)(nil)

func New(opts Options) *Repository {
	r := &Repository{
		client:     opts.Client,
		version:    opts.Version,
		speciesURL: opts.SpeciesURL,
		linksURL:   opts.LinksURL,
		logger:     logger.ComponentLogger(Name),
	}
	if r.version == "" {
		r.version = am.DefaultStringVersion
	}
	if r.speciesURL == "" {
		r.speciesURL = am.DefaultStringSpeciesURL
	}
	if r.linksURL == "" {
		r.linksURL = am.DefaultStringLinksURL
	}
	return r
}

func (r *Repository) Name() string        { return Name }
func (r *Repository) DisplayName() string { return DisplayName }

// StoredGraphName capitalises the words of an organism name, dropping
// anything that is not a letter or digit
func (r *Repository) StoredGraphName(graphName string) string {
	words := strings.Fields(graphName)
	for i, w := range words {
		words[i] = strings.Map(func(c rune) rune {
			if unicode.IsLetter(c) || unicode.IsDigit(c) {
				return c
			}
			return -1
		}, w)
	}
	return repository.CapitalizeTerms(words)
}

func (r *Repository) GraphName(data repository.GraphData) string {
	return data[NameColumn]
}

func (r *Repository) GraphURLs(data repository.GraphData) []string {
	return []string{am.Expand(r.linksURL, map[string]string{
		"version": r.version,
		"taxon":   data[TaxonColumn],
	})}
}

// GraphList downloads the species table
func (r *Repository) GraphList(ctx context.Context) ([]repository.GraphData, error) {
	url := am.Expand(r.speciesURL, map[string]string{"version": r.version})
	body, err := r.client.GetBody(ctx, url)
	if err != nil {
		return nil, errors.Wrap(err, "fetch STRING species")
	}
	rows, err := ParseSpecies(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", url)
	}
	r.logger.Debugw("STRING species parsed", "organisms", len(rows), "version", r.version)
	return rows, nil
}

// ParseSpecies reads a tab separated species table whose header line starts
// with "##"
func ParseSpecies(rd io.Reader) ([]repository.GraphData, error) {
	scanner := bufio.NewScanner(rd)
	var header []string
	var rows []repository.GraphData
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if header == nil {
			header = strings.Split(strings.TrimSpace(strings.TrimPrefix(line, "##")), "\t")
			continue
		}
		values := strings.Split(line, "\t")
		row := make(repository.GraphData, len(header))
		for i, h := range header {
			if i < len(values) {
				row[h] = strings.TrimSpace(values[i])
			}
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read species")
	}
	if header == nil {
		return nil, errors.NewNotFoundError("species table is empty")
	}
	return rows, nil
}

func (r *Repository) Citations(context.Context, repository.GraphData) ([]string, error) {
	bib, err := catalog.Citation(citationKey)
	if err != nil {
		return nil, err
	}
	return []string{bib}, nil
}

func (r *Repository) IsUnsupported(string) bool { return false }

// EdgeListPath is the downloaded links file itself
func (r *Repository) EdgeListPath(_ context.Context, graphName string, report repository.Report) (string, error) {
	if len(report.Files) == 0 {
		return "", errors.NewNotFoundError("graph %s: nothing was downloaded", graphName)
	}
	return report.Files[0], nil
}

func (r *Repository) NodeListPath(context.Context, string, repository.Report) (string, error) {
	return "", nil
}

func (r *Repository) BuildParameters(_ context.Context, graphName, edgePath, nodePath string) (edgelist.Parameters, error) {
	return repository.BaseParameters(graphName, edgePath, nodePath).Merge(Arguments), nil
}
