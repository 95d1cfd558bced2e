package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"persondir/config"
	"persondir/directory"
	"persondir/logger"
	"persondir/store"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	timeout   time.Duration

	cfg *config.Config
	log *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "persondir",
	Short: "Keep a local directory of people",
	Long: `persondir keeps a list of people (name, email, phone, state and city)
in a local store.

People can be added, listed and deleted from the command line, or through the
HTTP API started by the serve command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if logFormat != "" {
			cfg.Logging.Format = logFormat
		}
		log = logger.New(&cfg.Logging)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "persondir.yaml", "Configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "How long to wait for a storage operation")
}

// app is an opened store with the directory on top of it.
type app struct {
	blob    store.Blob
	dir     *directory.Directory
	metrics *metrics.Set
}

func openApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	blob, err := store.Open(cfg.Storage.Backend, cfg.Storage.Path, cfg.Storage.Bucket, cfg.Storage.LockTimeout.Std())
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}

	set := metrics.NewSet()
	dir := directory.New(store.NewPeople(blob, cfg.Storage.Key, log), directory.Options{
		FreshFor: cfg.Cache.FreshFor.Std(),
		Logger:   log,
		Metrics:  set,
	})
	return &app{blob: blob, dir: dir, metrics: set}, nil
}

func (a *app) Close() error {
	a.dir.Close()
	return a.blob.Close()
}
