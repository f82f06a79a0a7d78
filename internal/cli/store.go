package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"socialfeed/internal/store"
)

type copyOptions struct {
	to      string
	dataDir string
	dsn     string
}

// NewStoreCommand creates the store command group.
func NewStoreCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Validate and migrate the document store",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load and decode every collection",
		Long: `Load and decode every collection of the configured backend.

Exits non-zero on the first unreadable or corrupt collection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreCheck(rootOpts, cmd)
		},
	})

	copyOpts := &copyOptions{}
	copyCmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy every collection into another backend",
		Long: `Copy every collection of the configured backend into the backend named
by --to, replacing whatever the destination held.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStoreCopy(rootOpts, copyOpts, cmd)
		},
	}
	copyCmd.Flags().StringVar(&copyOpts.to, "to", "", "destination backend (file|sqlite|postgres)")
	copyCmd.Flags().StringVar(&copyOpts.dataDir, "to-data-dir", "", "destination directory for the file backend")
	copyCmd.Flags().StringVar(&copyOpts.dsn, "to-dsn", "", "destination sqlite path or postgres DSN")
	_ = copyCmd.MarkFlagRequired("to")
	cmd.AddCommand(copyCmd)

	return cmd
}

type checkResult struct {
	Status      string         `json:"status" yaml:"status"`
	Collections map[string]int `json:"collections" yaml:"collections"`
}

func runStoreCheck(opts *RootOptions, cmd *cobra.Command) error {
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	counts, err := st.Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("store check failed: %w", err)
	}

	res := checkResult{Status: "ok", Collections: make(map[string]int, len(counts))}
	rows := make([][]string, 0, len(store.Kinds))
	for _, kind := range store.Kinds {
		res.Collections[string(kind)] = counts[kind]
		rows = append(rows, []string{string(kind), strconv.Itoa(counts[kind])})
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Table(res, []string{"COLLECTION", "RECORDS"}, rows)
}

func runStoreCopy(opts *RootOptions, copyOpts *copyOptions, cmd *cobra.Command) error {
	src, err := opts.openStore()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := store.Open(store.Options{
		Backend: copyOpts.to,
		DataDir: copyOpts.dataDir,
		DSN:     copyOpts.dsn,
	}, opts.logger())
	if err != nil {
		return fmt.Errorf("open destination: %w", err)
	}
	defer dst.Close()

	if err := src.CopyTo(cmd.Context(), dst); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	counts, err := dst.Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("verify destination: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "copied %d users and %d posts to %s\n",
		counts[store.KindUsers], counts[store.KindPosts], copyOpts.to)
	return nil
}
