package am

// Config represents the graphminer configuration
type Config struct {
	Cache             CacheConfig             `mapstructure:"cache" toml:"cache" yaml:"cache" json:"cache"`
	Database          DatabaseConfig          `mapstructure:"database" toml:"database" yaml:"database" json:"database"`
	HTTP              HTTPConfig              `mapstructure:"http" toml:"http" yaml:"http" json:"http"`
	NetworkRepository NetworkRepositoryConfig `mapstructure:"networkrepository" toml:"networkrepository" yaml:"networkrepository" json:"networkrepository"`
	String            StringConfig            `mapstructure:"string" toml:"string" yaml:"string" json:"string"`
	Mine              MineConfig              `mapstructure:"mine" toml:"mine" yaml:"mine" json:"mine"`
}

// CacheConfig configures where downloaded graphs are stored
type CacheConfig struct {
	Path string `mapstructure:"path" toml:"path" yaml:"path" json:"path"` // Root of the download cache; each repository gets a subdirectory
}

// DatabaseConfig configures the SQLite database holding mining runs
type DatabaseConfig struct {
	Path string `mapstructure:"path" toml:"path" yaml:"path" json:"path"`
}

// HTTPConfig configures outbound requests to the graph repositories
type HTTPConfig struct {
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" toml:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
	UserAgent         string `mapstructure:"user_agent" toml:"user_agent" yaml:"user_agent" json:"user_agent"`
	From              string `mapstructure:"from" toml:"from" yaml:"from" json:"from"` // Contact address sent in the From header
	RequestsPerMinute int    `mapstructure:"requests_per_minute" toml:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	BlockPrivateIP    bool   `mapstructure:"block_private_ip" toml:"block_private_ip" yaml:"block_private_ip" json:"block_private_ip"`
}

// NetworkRepositoryConfig holds the URL templates used for NetworkRepository.
// {type} and {name} are substituted per graph.
type NetworkRepositoryConfig struct {
	DownloadURL string `mapstructure:"download_url" toml:"download_url" yaml:"download_url" json:"download_url"`
	PageURL     string `mapstructure:"page_url" toml:"page_url" yaml:"page_url" json:"page_url"`
	ListingURL  string `mapstructure:"listing_url" toml:"listing_url" yaml:"listing_url" json:"listing_url"`
}

// StringConfig holds the STRING release and URL templates.
// {version} and {taxon} are substituted per graph.
type StringConfig struct {
	Version    string `mapstructure:"version" toml:"version" yaml:"version" json:"version"`
	SpeciesURL string `mapstructure:"species_url" toml:"species_url" yaml:"species_url" json:"species_url"`
	LinksURL   string `mapstructure:"links_url" toml:"links_url" yaml:"links_url" json:"links_url"`
}

// MineConfig configures the batch preparation step
type MineConfig struct {
	Interactive bool   `mapstructure:"interactive" toml:"interactive" yaml:"interactive" json:"interactive"` // Ask an operator when the column layout is ambiguous
	Workers     int    `mapstructure:"workers" toml:"workers" yaml:"workers" json:"workers"`             // Forced to 1 when interactive
	Output      string `mapstructure:"output" toml:"output" yaml:"output" json:"output"`                 // Catalog TOML written by mine (empty = stdout)
}

// EffectiveWorkers returns the worker count honouring interactive mode
func (m MineConfig) EffectiveWorkers() int {
	if m.Interactive || m.Workers < 1 {
		return 1
	}
	return m.Workers
}

// RepositoryCachePath returns the cache directory for one repository
func (c *Config) RepositoryCachePath(repository string) string {
	if c.Cache.Path == "" {
		return repository
	}
	return c.Cache.Path + "/" + repository
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
