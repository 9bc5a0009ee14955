// Package catalog is the table of retrievable graphs: where each one is
// downloaded from, how its files are read, what it looked like when it was
// last mined, and which papers to cite when using it.
package catalog

import (
	"embed"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/teranos/graphminer/edgelist"
	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/logger"
)

//go:embed datasets.toml
var embeddedDatasets []byte

//go:embed citations/*.bib
var citations embed.FS

// Callback names a conversion run on downloaded files before loading
type Callback struct {
	Name         string `toml:"name" json:"name"`
	CitesPath    string `toml:"cites_path" json:"cites_path"`
	ContentPath  string `toml:"content_path" json:"content_path"`
	EdgeListPath string `toml:"edge_list_path" json:"edge_list_path"`
	NodeListPath string `toml:"node_list_path" json:"node_list_path"`
}

// Dataset is one retrievable graph
type Dataset struct {
	Name       string              `toml:"name" json:"name"`
	Method     string              `toml:"method" json:"method"`
	Repository string              `toml:"repository" json:"repository"`
	Type       string              `toml:"type,omitempty" json:"type,omitempty"`
	Taxon      string              `toml:"taxon,omitempty" json:"taxon,omitempty"`
	URLs       []string            `toml:"urls" json:"urls"`
	Directed   bool                `toml:"directed" json:"directed"`
	Weighted   bool                `toml:"weighted" json:"weighted"`
	Nodes      int64               `toml:"nodes,omitempty" json:"nodes,omitempty"`
	Edges      int64               `toml:"edges,omitempty" json:"edges,omitempty"`
	Density    float64             `toml:"density,omitempty" json:"density,omitempty"`
	RenderedAt string              `toml:"rendered_at,omitempty" json:"rendered_at,omitempty"`
	Citations  []string            `toml:"citations,omitempty" json:"citations,omitempty"`
	Quotes     []string            `toml:"quotes,omitempty" json:"quotes,omitempty"`
	Report     string              `toml:"report,omitempty" json:"report,omitempty"`
	Arguments  edgelist.Parameters `toml:"arguments,omitempty" json:"arguments,omitempty"`
	Callbacks  []Callback          `toml:"callbacks,omitempty" json:"callbacks,omitempty"`
}

// Repository holds settings shared by every dataset of one repository
type Repository struct {
	DisplayName string              `toml:"display_name" json:"display_name"`
	CachePath   string              `toml:"cache_path" json:"cache_path"`
	Arguments   edgelist.Parameters `toml:"arguments,omitempty" json:"arguments,omitempty"`
}

// File is the on-disk layout of a catalog
type File struct {
	Repositories map[string]Repository `toml:"repositories,omitempty" json:"repositories,omitempty"`
	Datasets     []Dataset             `toml:"dataset" json:"datasets"`
}

// Catalog indexes datasets by repository and method name
type Catalog struct {
	repositories map[string]Repository
	datasets     []Dataset
	byKey        map[string]int
}

// Load reads the embedded catalog, then merges each extra file on top.
// Entries in later files replace earlier ones with the same repository and
// method.
func Load(extra ...string) (*Catalog, error) {
	c := &Catalog{
		repositories: make(map[string]Repository),
		byKey:        make(map[string]int),
	}

	f, err := decode(string(embeddedDatasets), "embedded datasets.toml")
	if err != nil {
		return nil, err
	}
	c.Merge(f)

	for _, path := range extra {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read catalog %s", path)
		}
		f, err := decode(string(data), path)
		if err != nil {
			return nil, err
		}
		c.Merge(f)
	}

	return c, nil
}

func decode(data, source string) (File, error) {
	var f File
	md, err := toml.Decode(data, &f)
	if err != nil {
		return f, errors.Wrapf(err, "decode catalog %s", source)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logger.Warnw("Ignoring unknown catalog keys", "source", source, "keys", keys)
	}
	return f, nil
}

func key(repository, method string) string {
	return strings.ToLower(repository) + "/" + strings.ToLower(method)
}

// Merge adds the repositories and datasets of f, replacing duplicates
func (c *Catalog) Merge(f File) {
	for name, repo := range f.Repositories {
		c.repositories[name] = repo
	}
	for _, ds := range f.Datasets {
		k := key(ds.Repository, ds.Method)
		if i, ok := c.byKey[k]; ok {
			c.datasets[i] = ds
			continue
		}
		c.byKey[k] = len(c.datasets)
		c.datasets = append(c.datasets, ds)
	}
}

// Len returns the number of datasets
func (c *Catalog) Len() int { return len(c.datasets) }

// Lookup finds a dataset by method name ("FragariaVesca"), graph name
// ("Fragaria vesca") or "repository/method". Matching ignores case; when
// several repositories share a name the first loaded wins.
func (c *Catalog) Lookup(name string) (Dataset, error) {
	if repo, method, ok := strings.Cut(name, "/"); ok {
		if i, found := c.byKey[key(repo, method)]; found {
			return c.datasets[i], nil
		}
	}
	for _, ds := range c.datasets {
		if strings.EqualFold(ds.Method, name) || strings.EqualFold(ds.Name, name) {
			return ds, nil
		}
	}

	err := errors.NewNotFoundError("dataset %q is not in the catalog", name)
	if suggestions := c.suggest(name, 3); len(suggestions) > 0 {
		err = errors.WithHintf(err, "did you mean: %s", strings.Join(suggestions, ", "))
	}
	return Dataset{}, err
}

func (c *Catalog) suggest(name string, limit int) []string {
	methods := make([]string, len(c.datasets))
	for i, ds := range c.datasets {
		methods[i] = ds.Method
	}
	ranks := fuzzy.RankFindFold(name, methods)
	sort.Sort(ranks)
	var out []string
	for _, r := range ranks {
		if len(out) == limit {
			break
		}
		out = append(out, r.Target)
	}
	return out
}

// List returns the datasets of repository (all when empty) sorted by method
func (c *Catalog) List(repository string) []Dataset {
	var out []Dataset
	for _, ds := range c.datasets {
		if repository == "" || strings.EqualFold(ds.Repository, repository) {
			out = append(out, ds)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Repository != out[j].Repository {
			return out[i].Repository < out[j].Repository
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// Repositories returns the configured repository names, sorted
func (c *Catalog) Repositories() []string {
	names := make([]string, 0, len(c.repositories))
	for name := range c.repositories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Repository returns the shared settings of a repository
func (c *Catalog) Repository(name string) (Repository, bool) {
	repo, ok := c.repositories[name]
	return repo, ok
}

// DisplayName returns the human name of a repository, falling back to its key
func (c *Catalog) DisplayName(repository string) string {
	if repo, ok := c.repositories[repository]; ok && repo.DisplayName != "" {
		return repo.DisplayName
	}
	return repository
}

// CachePath returns the default download directory of a dataset's repository
func (c *Catalog) CachePath(ds Dataset) string {
	if repo, ok := c.repositories[ds.Repository]; ok && repo.CachePath != "" {
		return repo.CachePath
	}
	return "graphs/" + ds.Repository
}

// Parameters returns the stored build parameters of ds: the repository's
// shared arguments overridden by the dataset's own
func (c *Catalog) Parameters(ds Dataset) edgelist.Parameters {
	p := c.repositories[ds.Repository].Arguments.Merge(ds.Arguments)
	if p.Name == "" {
		p.Name = ds.Method
	}
	return p
}

// HasStoredLayout reports whether the column layout of ds is known, so it can
// be loaded without sniffing its files
func (c *Catalog) HasStoredLayout(ds Dataset) bool {
	p := c.Parameters(ds)
	return p.SourcesColumn != "" || p.SourcesColumnNumber != nil
}

// Citation returns the embedded BibTeX entry for key
func Citation(key string) (string, error) {
	data, err := citations.ReadFile("citations/" + key + ".bib")
	if err != nil {
		return "", errors.NewNotFoundError("no citation %q", key)
	}
	return strings.TrimSpace(string(data)), nil
}

// References joins the citations of ds, in order, followed by its quotes
func References(ds Dataset) (string, error) {
	parts := make([]string, 0, len(ds.Citations)+len(ds.Quotes))
	for _, k := range ds.Citations {
		bib, err := Citation(k)
		if err != nil {
			return "", errors.Wrapf(err, "dataset %s", ds.Method)
		}
		parts = append(parts, bib)
	}
	parts = append(parts, ds.Quotes...)
	return strings.Join(parts, "\n\n"), nil
}

var bibKey = regexp.MustCompile(`^\s*@\w+\s*\{\s*([^,\s]+)\s*,`)

// BibKey returns the key of a BibTeX entry, or "" when text is not one
func BibKey(text string) string {
	m := bibKey.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// Write encodes f as TOML
func Write(w io.Writer, f File) error {
	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return errors.Wrap(err, "encode catalog")
	}
	return nil
}

// WriteFile writes f to path
func WriteFile(path string, f File) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := Write(out, f); err != nil {
		out.Close()
		return err
	}
	return errors.Wrapf(out.Close(), "close %s", path)
}
