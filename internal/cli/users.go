package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// NewUsersCommand creates the users command group.
func NewUsersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect registered users",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users in storage order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersList(rootOpts, cmd)
		},
	})
	return cmd
}

type userRow struct {
	ID        int    `json:"id" yaml:"id"`
	Username  string `json:"username" yaml:"username"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

func runUsersList(opts *RootOptions, cmd *cobra.Command) error {
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	users, err := st.Users.List(cmd.Context())
	if err != nil {
		return err
	}

	// Password hashes never leave the store.
	out := make([]userRow, len(users))
	rows := make([][]string, len(users))
	for i, u := range users {
		created := ""
		if !u.CreatedAt.IsZero() {
			created = u.CreatedAt.UTC().Format(time.RFC3339)
		}
		out[i] = userRow{ID: u.ID, Username: u.Username, CreatedAt: created}
		rows[i] = []string{strconv.Itoa(u.ID), u.Username, created}
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Table(out, []string{"ID", "USERNAME", "CREATED"}, rows)
}
