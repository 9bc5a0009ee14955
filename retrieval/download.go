package retrieval

import (
	"context"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-getter"
	"go.uber.org/zap"

	"github.com/teranos/graphminer/am"
	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/internal/httpclient"
	"github.com/teranos/graphminer/internal/util"
	"github.com/teranos/graphminer/logger"
	"github.com/teranos/graphminer/repository"
)

// Archive extensions extracted into the destination directory. Anything
// else, including plain .gz files, is stored as downloaded; frame.Read
// decompresses .gz edge lists when they are loaded.
var archiveExtensions = []string{".zip", ".tar.gz", ".tgz"}

const (
	// markerPrefix names the hidden file recording a completed extraction
	markerPrefix = ".done-"
	// partSuffix marks a plain download in progress. It is renamed to the
	// final name only once the body has been read in full.
	partSuffix = ".part"
)

// Downloader fetches graph files into a cache directory with go-getter
type Downloader struct {
	client *httpclient.SaferClient
	logger *zap.SugaredLogger
}

// NewDownloader creates a Downloader sending requests through client
func NewDownloader(client *httpclient.SaferClient) *Downloader {
	return &Downloader{
		client: client,
		logger: logger.ComponentLogger("download"),
	}
}

func (d *Downloader) getters() map[string]getter.Getter {
	// The request timeout suits page scrapes, not archives; ctx bounds downloads
	transfer := *d.client.Client
	transfer.Timeout = 0
	httpGetter := &getter.HttpGetter{
		Client:                &transfer,
		Header:                d.client.Header(),
		XTerraformGetDisabled: true,
	}
	return map[string]getter.Getter{
		"http":  httpGetter,
		"https": httpGetter,
	}
}

func decompressors() map[string]getter.Decompressor {
	return map[string]getter.Decompressor{
		"zip":    new(getter.ZipDecompressor),
		"tar.gz": new(getter.TarGzipDecompressor),
		"tgz":    new(getter.TarGzipDecompressor),
	}
}

// fileName returns the last path element of rawURL
func fileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrapf(err, "parse %s", rawURL)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", errors.NewInvalidRequestError("URL %s names no file", rawURL)
	}
	return name, nil
}

// Fetch downloads every URL into dest. Archives are extracted in place.
// Files already present are not downloaded again.
func (d *Downloader) Fetch(ctx context.Context, urls []string, dest string) (repository.Report, error) {
	report := repository.Report{Destination: dest}
	if err := os.MkdirAll(dest, am.DefaultDirPermissions); err != nil {
		return report, errors.Wrapf(err, "create %s", dest)
	}

	var plain []string
	for _, rawURL := range urls {
		name, err := fileName(rawURL)
		if err != nil {
			return report, err
		}
		archive := util.HasAnySuffix(strings.ToLower(name), archiveExtensions...)

		target := filepath.Join(dest, name)
		if archive {
			target = filepath.Join(dest, markerPrefix+name)
		}
		if _, err := os.Stat(target); err == nil {
			d.logger.Debugw("cached", logger.FieldURL, rawURL, logger.FieldPath, target, logger.FieldCacheHit, true)
		} else if err := d.get(ctx, rawURL, dest, name, archive); err != nil {
			return report, err
		}

		if !archive {
			plain = append(plain, filepath.Join(dest, name))
		}
	}

	files, err := extractedFiles(dest)
	if err != nil {
		return report, err
	}
	// Direct downloads come first, in URL order
	report.Files = append(plain, without(files, plain)...)
	if logger.Tracing() {
		for _, f := range report.Files {
			d.logger.Debugw("file", logger.FieldPath, f)
		}
	}
	return report, nil
}

func (d *Downloader) get(ctx context.Context, rawURL, dest, name string, archive bool) error {
	if _, err := d.client.ValidateURL(rawURL); err != nil {
		return errors.Wrapf(err, "download %s", rawURL)
	}
	if err := d.client.Wait(ctx); err != nil {
		return err
	}

	final := filepath.Join(dest, name)
	client := &getter.Client{
		Ctx:           ctx,
		Src:           rawURL,
		Dst:           final + partSuffix,
		Mode:          getter.ClientModeFile,
		Getters:       d.getters(),
		Decompressors: decompressors(),
	}
	if archive {
		client.Dst = dest
		client.Mode = getter.ClientModeDir
	}

	start := time.Now()
	d.logger.Infow("downloading", logger.FieldURL, rawURL, logger.FieldDestination, dest)
	if err := client.Get(); err != nil {
		if !archive {
			_ = os.Remove(client.Dst)
		}
		return errors.Wrapf(err, "download %s", rawURL)
	}
	d.logger.Debugw("downloaded", logger.FieldURL, rawURL, logger.FieldDurationMS, time.Since(start).Milliseconds())

	if !archive {
		if err := os.Rename(client.Dst, final); err != nil {
			return errors.Wrapf(err, "move %s into place", final)
		}
		return nil
	}
	marker := filepath.Join(dest, markerPrefix+name)
	if err := os.WriteFile(marker, []byte(rawURL+"\n"), am.DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "write %s", marker)
	}
	return nil
}

// extractedFiles lists every regular file under dest except markers and
// unfinished downloads
func extractedFiles(dest string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dest, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() || strings.HasPrefix(e.Name(), markerPrefix) || strings.HasSuffix(e.Name(), partSuffix) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", dest)
	}
	sort.Strings(files)
	return files, nil
}

func without(all, drop []string) []string {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	var out []string
	for _, f := range all {
		if !skip[f] {
			out = append(out, f)
		}
	}
	return out
}
