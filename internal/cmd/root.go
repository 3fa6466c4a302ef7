package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/packrat/internal/config"
	"github.com/Iron-Ham/packrat/internal/event"
	"github.com/Iron-Ham/packrat/internal/files"
	"github.com/Iron-Ham/packrat/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "packrat",
	Short: "Nested archive builder and file toolkit",
	Long: `Packrat writes, copies, and reads files relative to a configured base
directory and packs them into tar.gz or zip archives. Archive sessions
nest: a child archive can fold into its parent as a single compressed
entry, so one command can produce an archive of archives.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/packrat/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/packrat")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PACKRAT")
	// Replace dots with underscores for nested keys in env vars
	// e.g., PACKRAT_LOGGING_LEVEL for logging.level
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// runtime bundles the collaborators a command works through: the effective
// settings, a file service wired to an event bus, and a logger writing to
// the packrat log directory.
type runtime struct {
	settings *config.Settings
	service  *files.Service
	bus      *event.Bus
	log      *logging.Logger
}

func newRuntime() (*runtime, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	format, err := settings.Format()
	if err != nil {
		return nil, err
	}

	base, err := filepath.Abs(settings.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	log := logging.NopLogger()
	if settings.Logging.Enabled {
		log, err = logging.NewLoggerWithRotation(config.LogDir(), settings.Logging.Level, logging.RotationConfig{
			MaxSizeMB:  settings.Logging.MaxSizeMB,
			MaxBackups: settings.Logging.MaxBackups,
			Compress:   true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
	}

	bus := event.NewBus()
	service := files.NewService(base, format,
		files.WithBus(bus),
		files.WithLogger(log),
		files.WithDefaultEncoding(settings.Encoding),
	)

	return &runtime{
		settings: settings,
		service:  service,
		bus:      bus,
		log:      log,
	}, nil
}

func (r *runtime) close() {
	_ = r.log.Close()
}
