package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"socialfeed/internal/config"
	"socialfeed/internal/logger"
	"socialfeed/internal/store"
)

// RootOptions holds global flags for all commands. Empty store flags fall
// back to the same configuration the server reads.
type RootOptions struct {
	Backend string
	DataDir string
	DSN     string
	Format  string // "text" | "json" | "yaml"
	Verbose bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the feedctl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "feedctl",
		Short: "Inspect and maintain SocialFeed data",
		Long:  "Administrative tooling for the SocialFeed document store: list records, validate collections, copy data between backends and seed demo data.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "store backend (file|sqlite|postgres|memory); defaults to STORE_BACKEND")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "file backend directory; defaults to DATA_DIR")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "sqlite path or postgres DSN; defaults to DATABASE_URL")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log store activity to stderr")

	cmd.AddCommand(NewUsersCommand(opts))
	cmd.AddCommand(NewPostsCommand(opts))
	cmd.AddCommand(NewStoreCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// storeOptions merges the flags over the loaded configuration.
func (o *RootOptions) storeOptions() (store.Options, error) {
	cfg, err := config.Load()
	if err != nil {
		return store.Options{}, err
	}
	opts := store.Options{Backend: cfg.StoreBackend, DataDir: cfg.DataDir, DSN: cfg.DatabaseURL}
	if o.Backend != "" {
		opts.Backend = o.Backend
	}
	if o.DataDir != "" {
		opts.DataDir = o.DataDir
	}
	if o.DSN != "" {
		opts.DSN = o.DSN
	}
	return opts, nil
}

func (o *RootOptions) logger() *zap.Logger {
	if !o.Verbose {
		return zap.NewNop()
	}
	l, err := logger.New(zap.DebugLevel, true)
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// openStore opens the store the flags and configuration describe.
func (o *RootOptions) openStore() (*store.Store, error) {
	opts, err := o.storeOptions()
	if err != nil {
		return nil, err
	}
	return store.Open(opts, o.logger())
}
