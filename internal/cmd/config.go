package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/packrat/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify packrat configuration",
	Long: `View or modify packrat configuration.

Without arguments, displays the effective configuration as YAML.
Use subcommands to modify settings or locate the config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  packrat config set compress_format zip
  packrat config set logging.level debug
  packrat config set watch.debounce_ms 500

Valid keys:
  compress_format      - Archive container format (tar.gz, zip)
  base_dir             - Directory relative paths resolve against
  lock_base_dir        - Freeze base_dir (true/false)
  encoding             - Default payload encoding
  logging.enabled      - Enable file logging (true/false)
  logging.level        - Log level (debug/info/warn/error)
  logging.max_size_mb  - Log size in megabytes before rotation
  logging.max_backups  - Rotated log files to keep
  watch.debounce_ms    - Watch quiet window in milliseconds

Changing base_dir or lock_base_dir while the base directory is locked
is refused, not an error.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Println(mutedStyle.Render("# config file: " + used))
	} else {
		fmt.Println(mutedStyle.Render("# config file: (none - using defaults)"))
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to render settings: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// Validate the key exists
	validKeys := map[string]string{
		"compress_format":     "string",
		"base_dir":            "string",
		"lock_base_dir":       "bool",
		"encoding":            "string",
		"logging.enabled":     "bool",
		"logging.level":       "string",
		"logging.max_size_mb": "int",
		"logging.max_backups": "int",
		"watch.debounce_ms":   "int",
	}

	keyType, ok := validKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'packrat config set --help' to see valid keys", key)
	}

	// Validate the value based on type
	var typedValue any
	switch keyType {
	case "string":
		typedValue = value
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = value == "true"
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = intVal
	}

	// Run the change through Apply so format and encoding values are
	// validated and the base-dir lock refuses rather than errors.
	settings, err := config.Load()
	if err != nil {
		return err
	}
	_, rejected, err := settings.Apply(nestKey(key, typedValue))
	if err != nil {
		return err
	}
	if len(rejected) > 0 {
		fmt.Printf("%s base directory is locked; %s not changed\n",
			warnStyle.Render("refused:"), strings.Join(rejected, ", "))
		return nil
	}

	// Ensure config directory exists
	if err := os.MkdirAll(config.ConfigDir(), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.Set(key, typedValue)

	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Set %s = %v\n", key, typedValue)
	fmt.Printf("Config saved to %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Printf("Active config: %s\n", used)
	} else {
		fmt.Printf("Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Println("\nSearch paths:")
	fmt.Printf("  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Printf("  2. $HOME/.config/packrat/config.yaml\n")
	fmt.Printf("  3. ./config.yaml (current directory)\n")
	fmt.Println("\nEnvironment variables: PACKRAT_* (e.g., PACKRAT_COMPRESS_FORMAT)")

	return nil
}

// nestKey expands a dotted key into the nested map shape Apply decodes.
func nestKey(key string, value any) map[string]any {
	parts := strings.Split(key, ".")
	payload := map[string]any{parts[len(parts)-1]: value}
	for i := len(parts) - 2; i >= 0; i-- {
		payload = map[string]any{parts[i]: payload}
	}
	return payload
}
