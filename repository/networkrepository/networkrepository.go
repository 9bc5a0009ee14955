// Package networkrepository lists and prepares graphs hosted by
// NetworkRepository (networkrepository.com). Graph files carry no header and
// no stable layout, so their columns are sniffed.
package networkrepository

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/teranos/graphminer/am"
	"github.com/teranos/graphminer/catalog"
	"github.com/teranos/graphminer/edgelist"
	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/frame"
	"github.com/teranos/graphminer/internal/httpclient"
	"github.com/teranos/graphminer/internal/util"
	"github.com/teranos/graphminer/logger"
	"github.com/teranos/graphminer/repository"
	"github.com/teranos/graphminer/sniff"
)

const (
	Name        = "networkrepository"
	DisplayName = "NetworkRepository"

	nameColumn = "Graph Name"
	typeColumn = "Type"
)

// Blockquote markers naming the references that have their own BibTeX entry
const (
	repositoryTarget = "The Network Data Repository"
	skitterTarget    = "Skitter"
	whoisTarget      = "WHOIS"
	routeviewsTarget = "RouteViews"
)

var (
	unsupportedPrefixes = []string{"soc-gemsec-", "fb-pages-", "rec-", "ia-", "reptilia-", "mammalia-", "insecta-"}
	unsupportedSuffixes = []string{"-trapping", "-ratings"}
)

// Options configures a Repository. Empty URL templates take the am defaults.
type Options struct {
	Client      *httpclient.SaferClient
	Prompter    sniff.Prompter
	DownloadURL string
	PageURL     string
	ListingURL  string
}

// Repository implements repository.GraphRepository for NetworkRepository
type Repository struct {
	client      *httpclient.SaferClient
	prompter    sniff.Prompter
	downloadURL string
	pageURL     string
	listingURL  string
	logger      *zap.SugaredLogger
}

var _ repository.GraphRepository = (*Repository)(nil)

// New creates a NetworkRepository source
func New(opts Options) *Repository {
	r := &Repository{
		client:      opts.Client,
		prompter:    opts.Prompter,
		downloadURL: opts.DownloadURL,
		pageURL:     opts.PageURL,
		listingURL:  opts.ListingURL,
		logger:      logger.ComponentLogger(Name),
	}
	if r.downloadURL == "" {
		r.downloadURL = am.DefaultNetworkRepositoryDownloadURL
	}
	if r.pageURL == "" {
		r.pageURL = am.DefaultNetworkRepositoryPageURL
	}
	if r.listingURL == "" {
		r.listingURL = am.DefaultNetworkRepositoryListingURL
	}
	if r.prompter == nil {
		r.prompter = sniff.NonInteractive{}
	}
	return r
}

func (r *Repository) Name() string        { return Name }
func (r *Repository) DisplayName() string { return DisplayName }

// StoredGraphName capitalises the dash separated terms of graphName
func (r *Repository) StoredGraphName(graphName string) string {
	return repository.CapitalizeTerms(strings.Split(graphName, "-"))
}

func (r *Repository) GraphName(data repository.GraphData) string {
	return data[nameColumn]
}

func (r *Repository) GraphURLs(data repository.GraphData) []string {
	return []string{am.Expand(r.downloadURL, map[string]string{
		"type": data[typeColumn],
		"name": r.GraphName(data),
	})}
}

// IsUnsupported reports graph families whose files cannot be read as edge
// lists
func (r *Repository) IsUnsupported(graphName string) bool {
	return util.HasAnyPrefix(graphName, unsupportedPrefixes...) ||
		util.HasAnySuffix(graphName, unsupportedSuffixes...)
}

// GraphList reads the first table of the listing page, keyed by its header
// cells
func (r *Repository) GraphList(ctx context.Context) ([]repository.GraphData, error) {
	body, err := r.client.GetBody(ctx, r.listingURL)
	if err != nil {
		return nil, errors.Wrap(err, "fetch NetworkRepository listing")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "parse NetworkRepository listing")
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, errors.NewNotFoundError("no table in %s", r.listingURL)
	}

	var header []string
	var rows []repository.GraphData
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if header == nil {
			cells := tr.Find("th")
			if cells.Length() == 0 {
				cells = tr.Find("td")
			}
			header = cellTexts(cells)
			return
		}
		values := cellTexts(tr.Find("td"))
		if len(values) == 0 {
			return
		}
		row := make(repository.GraphData, len(header))
		for i, h := range header {
			if i < len(values) {
				row[h] = values[i]
			}
		}
		if row[nameColumn] != "" {
			rows = append(rows, row)
		}
	})
	r.logger.Debugw("NetworkRepository listing parsed", "graphs", len(rows))
	return rows, nil
}

func cellTexts(s *goquery.Selection) []string {
	out := make([]string, 0, s.Length())
	s.Each(func(_ int, c *goquery.Selection) {
		out = append(out, strings.TrimSpace(c.Text()))
	})
	return out
}

// page fetches the graph's page. Failures yield an empty document.
func (r *Repository) page(ctx context.Context, graphName string) *goquery.Document {
	url := am.Expand(r.pageURL, map[string]string{"name": graphName})
	body, err := r.client.GetBody(ctx, url)
	if err != nil {
		r.logger.Debugw("graph page unavailable", "graph", graphName, "url", url, "error", err)
		body = nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	return doc
}

// IsWeighted reports whether the graph page lists the edge weights as
// weighted
func (r *Repository) IsWeighted(ctx context.Context, graphName string) bool {
	return pageSaysWeighted(r.page(ctx, graphName))
}

func pageSaysWeighted(doc *goquery.Document) bool {
	weighted := false
	doc.Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
		if strings.TrimSpace(td.Text()) != "Edge weights" {
			return true
		}
		weighted = strings.TrimSpace(td.Next().Text()) == "Weighted"
		return !weighted
	})
	return weighted
}

// Citations returns the repository's own reference, the Skitter, WHOIS and
// RouteViews references when the graph page quotes them, and every other
// quoted reference as plain text
func (r *Repository) Citations(ctx context.Context, data repository.GraphData) ([]string, error) {
	base, err := catalog.Citation("nr")
	if err != nil {
		return nil, err
	}
	citations := []string{base}

	var quotes []string
	r.page(ctx, r.GraphName(data)).Find("blockquote").Each(func(_ int, q *goquery.Selection) {
		quotes = append(quotes, strings.TrimSpace(q.Text()))
	})

	for _, extra := range []struct{ target, key string }{
		{skitterTarget, "skitter"},
		{whoisTarget, "whois"},
		{routeviewsTarget, "routeviews"},
	} {
		if !anyContains(quotes, extra.target) {
			continue
		}
		bib, err := catalog.Citation(extra.key)
		if err != nil {
			return nil, err
		}
		citations = append(citations, bib)
	}

	for _, q := range quotes {
		if !util.ContainsAny(q, repositoryTarget, skitterTarget, whoisTarget, routeviewsTarget) {
			citations = append(citations, q)
		}
	}
	return citations, nil
}

func anyContains(texts []string, target string) bool {
	for _, t := range texts {
		if strings.Contains(t, target) {
			return true
		}
	}
	return false
}

func errGraphIdx(graphName string) error {
	return errors.NewUnsupportedGraphError("graph %s: the graph file format with graph_idx files is not currently supported", graphName)
}

// lastCandidate returns the last file whose name contains one of targets
func lastCandidate(files []string, targets ...string) string {
	candidate := ""
	for _, f := range files {
		if util.ContainsAny(f, targets...) {
			candidate = f
		}
	}
	return candidate
}

// EdgeListPath picks the edge list among the extracted files, asking the
// prompter when the file names are not conclusive
func (r *Repository) EdgeListPath(ctx context.Context, graphName string, report repository.Report) (string, error) {
	files, err := repository.ListDataFiles(report.Destination)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if strings.HasSuffix(f, ".graph_idx") {
			return "", errGraphIdx(graphName)
		}
	}
	if len(files) == 1 {
		return report.Join(files[0]), nil
	}

	candidate := lastCandidate(files, "edge", ".mtx")
	if candidate != "" && util.HasAnySuffix(candidate, ".edges", ".mtx") {
		return report.Join(candidate), nil
	}
	chosen, err := sniff.ChooseFile(ctx, r.prompter, "edge_list_path", files, candidate)
	if err != nil {
		return "", errors.Wrapf(err, "graph %s", graphName)
	}
	return report.Join(chosen), nil
}

// NodeListPath picks the node list among the extracted files. A lone file
// is the edge list, so there is no node list.
func (r *Repository) NodeListPath(ctx context.Context, graphName string, report repository.Report) (string, error) {
	files, err := repository.ListDataFiles(report.Destination)
	if err != nil {
		return "", err
	}
	if len(files) == 1 {
		return "", nil
	}
	for _, f := range files {
		if strings.HasSuffix(f, ".graph_idx") {
			return "", errGraphIdx(graphName)
		}
	}

	candidate := lastCandidate(files, "node", "types")
	if candidate != "" && util.HasAnySuffix(candidate, ".node_labels", ".nodes", ".types") {
		return report.Join(candidate), nil
	}
	chosen, err := sniff.ChooseFile(ctx, r.prompter, "node_list_path", files, candidate)
	if err != nil {
		return "", errors.Wrapf(err, "graph %s", graphName)
	}
	return report.Join(chosen), nil
}

// BuildParameters sniffs the column layout of the edge list and, when
// present, the node list
func (r *Repository) BuildParameters(ctx context.Context, graphName, edgePath, nodePath string) (edgelist.Parameters, error) {
	params := repository.BaseParameters(graphName, edgePath, nodePath)

	edges, err := frame.Read(edgePath, frame.Options{})
	if err != nil {
		return params, err
	}
	layout, err := sniff.SniffEdges(ctx, graphName, edges, r.IsWeighted(ctx, graphName), r.prompter)
	if err != nil {
		return params, err
	}
	layout.Apply(&params)
	params.EdgeSeparator = edges.Separator

	no := false
	params.NodeHeader = &no
	if nodePath == "" {
		return params, nil
	}

	nodes, err := frame.Read(nodePath, frame.Options{})
	if err != nil {
		return params, err
	}
	nodeLayout, err := sniff.SniffNodes(ctx, graphName, nodes, r.prompter)
	if err != nil {
		return params, err
	}
	nodeLayout.Apply(&params)
	params.NodeSeparator = nodes.Separator
	return params, nil
}
