package commands

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/graphminer/am"
	"github.com/teranos/graphminer/display"
	"github.com/teranos/graphminer/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage graphminer configuration",
	Long: `am - Manage graphminer configuration ("I am")

Display and manage graphminer configuration settings.

Configuration sources (in order of precedence):
1. Environment variables (GRAPHMINER_* prefix)
2. Project config (./am.toml, searched up the directory tree)
3. User config (~/.graphminer/am.toml)
4. Default values

Examples:
  graphminer am show                    # Show current configuration
  graphminer am show --format json      # Show configuration in JSON format
  graphminer am get http.requests_per_minute
  graphminer am init                    # Write a starter ~/.graphminer/am.toml
  graphminer am validate                # Validate current configuration`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current graphminer configuration from all sources",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., cache.path, mine.workers)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter configuration file",
	Long: `Write every default setting to a TOML file, ~/.graphminer/am.toml unless
a path is given. An existing file is kept unless --force is set; the
replaced file is rotated into .back1 and .back2 backups.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAmInit,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Validate that the current graphminer configuration is valid",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long: `Show the configuration cascade and which files were checked.

Lists the configuration files in order of precedence, showing
which exist and which are missing.`,
	RunE: runAmWhere,
}

var (
	configFormat string
	initForce    bool
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	amInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file (keeps a backup)")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amInitCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	if display.ShouldOutputJSON(cmd) {
		configFormat = "json"
	}

	switch configFormat {
	case "json":
		return display.OutputJSON(cfg)

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Printf("# graphminer configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Printf("# graphminer configuration\n%s", string(data))

	default:
		return errors.NewInvalidRequestError("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}

	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	v := am.GetViper()
	if !v.IsSet(key) {
		return errors.NewNotFoundError("configuration key %q not found", key)
	}

	fmt.Println(am.Get(key))
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path := am.UserConfigPath()
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.NewInvalidRequestError("no home directory; pass a path to write")
	}

	if err := am.WriteStarter(path, initForce); err != nil {
		return err
	}
	pterm.Success.Printfln("Wrote %s", path)
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	pterm.Success.Println("Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	fmt.Println("Configuration cascade (later overrides earlier):")
	fmt.Println("  1. [DEFAULT]  Built-in defaults")
	fmt.Println("  2. [USER]     ~/.graphminer/am.toml")
	fmt.Println("  3. [PROJECT]  ./am.toml (searches up directories)")
	fmt.Println("  4. [ENV]      GRAPHMINER_* environment variables")
	fmt.Println()

	var rows [][]string
	for _, src := range am.Sources() {
		state := "loaded"
		if !src.Found {
			state = "missing"
		}
		rows = append(rows, []string{strings.ToUpper(src.Kind), src.Path, state})
	}
	if len(rows) == 0 {
		fmt.Println("No configuration files; using defaults and environment only")
		return nil
	}
	return display.Table(nil, []string{"SOURCE", "PATH", "STATE"}, rows)
}
