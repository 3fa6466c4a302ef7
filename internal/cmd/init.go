package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/packrat/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter config file",
	Long:  `Create a commented config file at ~/.config/packrat/config.yaml with all available options.`,
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'packrat config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configContent := `# Packrat Configuration

# Container format archive sessions produce
# Options: tar.gz, zip
compress_format: tar.gz

# Directory relative paths resolve against
base_dir: .

# Freeze base_dir: once true, changes to base_dir (and to the lock
# itself) are refused
lock_base_dir: false

# Payload encoding assumed when a write or read declares none
# Options: utf8, base64, base64url, hex, latin1, utf16le, utf16be
encoding: utf8

# Glob patterns dropped from every match set
excludes: []

# Logging settings
logging:
  enabled: true
  # Log level: debug, info, warn, error
  level: info
  # Maximum log file size in megabytes before rotation
  max_size_mb: 10
  # Number of rotated log files to keep
  max_backups: 3

# Base directory watcher settings
watch:
  # Quiet window before a change is reported, in milliseconds
  debounce_ms: 250
  # Base-name globs that never produce change events
  ignore:
    - .git
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configFile)
	fmt.Println("Edit this file to customize packrat's behavior.")
	return nil
}
