package commands

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/graphminer/am"
	"github.com/teranos/graphminer/catalog"
	"github.com/teranos/graphminer/db"
	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/internal/httpclient"
	"github.com/teranos/graphminer/internal/util"
	"github.com/teranos/graphminer/logger"
)

// loadConfig loads and validates the configuration cascade
func loadConfig() (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithHint(
			errors.Wrap(err, "invalid configuration"),
			"run 'graphminer am where' to see which files were read")
	}
	return cfg, nil
}

// newClient builds the rate-limited HTTP client every download goes through
func newClient(cfg *am.Config) *httpclient.SaferClient {
	return httpclient.NewSaferClientWithOptions(
		time.Duration(cfg.HTTP.TimeoutSeconds)*time.Second,
		httpclient.SaferClientOptions{
			BlockPrivateIP:    util.Ptr(cfg.HTTP.BlockPrivateIP),
			UserAgent:         cfg.HTTP.UserAgent,
			From:              cfg.HTTP.From,
			RequestsPerMinute: cfg.HTTP.RequestsPerMinute,
		},
	)
}

// loadCatalog reads the built-in catalog plus any --catalog files
func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	extra, _ := cmd.Flags().GetStringSlice("catalog")
	return catalog.Load(extra...)
}

// openDatabase opens and migrates the run database. An empty dbPath falls
// back to database.path.
func openDatabase(cfg *am.Config, dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	return db.OpenWithMigrations(dbPath, logger.Logger)
}

// PrintError writes err and any hints attached to it
func PrintError(w io.Writer, err error) {
	fmt.Fprintln(w, pterm.Red("Error: ")+err.Error())
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintln(w, pterm.Gray("hint: "+hint))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
