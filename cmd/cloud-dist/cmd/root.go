package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Frida7771/cloud-dist/internal/api"
	"github.com/Frida7771/cloud-dist/internal/config"
	"github.com/Frida7771/cloud-dist/internal/history"
	"github.com/Frida7771/cloud-dist/internal/logging"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cloud-dist",
	Short: "Cloud drive client with an interactive namespace browser",
	Long: `cloud-dist browses and manages a folder hierarchy stored in a
cloud-dist file service: upload, download, move, rename, delete, and
preview files from the terminal.

Running 'cloud-dist' without arguments launches the interactive browser.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return browseCmd.RunE(cmd, args)
	},
}

func Execute() error {
	defer logging.Sync()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/cloud-dist/config.json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

// setup loads the config, initializes logging, and builds the API client.
func setup() (*config.Config, *api.Client, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logging.Init(logging.Config{Level: cfg.LogLevel, OutputPath: cfg.LogFile}); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if verbose {
		logging.SetLevel("debug")
	}

	if cfg.Token == "" {
		fmt.Fprintln(os.Stderr, "Warning: no API token configured; set token in the config file or CLOUD_DIST_TOKEN")
	} else if api.TokenExpired(cfg.Token, time.Now()) {
		fmt.Fprintln(os.Stderr, "Warning: the configured API token is expired or malformed")
	}

	client := api.New(api.Config{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		Token:   cfg.Token,
		Timeout: cfg.Timeout(),
	})
	return cfg, client, nil
}

// openHistory opens the transfer log. Failure is logged and tolerated; the
// log is a convenience, not a dependency.
func openHistory(cfg *config.Config) *history.Store {
	path := cfg.HistoryPath
	if path == "" {
		path = filepath.Join(cfg.StateDir(), "history.db")
	}
	store, err := history.Open(path)
	if err != nil {
		logging.Warn("opening transfer history", zap.Error(err))
		return nil
	}
	return store
}

func exitWithError(msg string, code int) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}
