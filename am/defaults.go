package am

import (
	"github.com/spf13/viper"

	"github.com/teranos/graphminer/version"
)

// Default URL templates
const (
	DefaultNetworkRepositoryDownloadURL = "http://nrvis.com/download/data/{type}/{name}.zip"
	DefaultNetworkRepositoryPageURL     = "http://networkrepository.com/{name}.php"
	DefaultNetworkRepositoryListingURL  = "http://networkrepository.com/networks.php"

	DefaultStringVersion    = "v11.0"
	DefaultStringSpeciesURL = "https://stringdb-static.org/download/species.{version}.txt"
	DefaultStringLinksURL   = "https://stringdb-static.org/download/protein.links.{version}/{taxon}.protein.links.{version}.txt.gz"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("cache.path", "graphs")
	v.SetDefault("database.path", "graphminer.db")

	v.SetDefault("http.timeout_seconds", 10) // Same fixed timeout the citation scrape always used
	v.SetDefault("http.user_agent", "graphminer/"+version.Version)
	v.SetDefault("http.from", "")
	v.SetDefault("http.requests_per_minute", 30)
	v.SetDefault("http.block_private_ip", true)

	v.SetDefault("networkrepository.download_url", DefaultNetworkRepositoryDownloadURL)
	v.SetDefault("networkrepository.page_url", DefaultNetworkRepositoryPageURL)
	v.SetDefault("networkrepository.listing_url", DefaultNetworkRepositoryListingURL)

	v.SetDefault("string.version", DefaultStringVersion)
	v.SetDefault("string.species_url", DefaultStringSpeciesURL)
	v.SetDefault("string.links_url", DefaultStringLinksURL)

	v.SetDefault("mine.interactive", true)
	v.SetDefault("mine.workers", 1)
	v.SetDefault("mine.output", "")
}

// BindSensitiveEnvVars explicitly binds configuration that is usually
// provided through the environment rather than a checked-in file
func BindSensitiveEnvVars(v *viper.Viper) {
	_ = v.BindEnv("http.from", "GRAPHMINER_HTTP_FROM")
	_ = v.BindEnv("database.path", "GRAPHMINER_DB_PATH")
}
