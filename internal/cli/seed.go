package cli

import (
	"github.com/spf13/cobra"

	"socialfeed/internal/seed"
	"socialfeed/internal/services"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &seed.Options{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the store with demo users and posts",
		Long: `Register demo accounts and create posts with likes, reactions and
comments between them. Every demo account uses the password "` + seed.DemoPassword + `".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, opts, cmd)
		},
	}
	cmd.Flags().IntVar(&opts.Users, "users", 5, "number of accounts to register")
	cmd.Flags().IntVar(&opts.Posts, "posts", 20, "number of posts to create")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed for reproducible data (0 = random)")

	return cmd
}

func runSeed(rootOpts *RootOptions, opts *seed.Options, cmd *cobra.Command) error {
	st, err := rootOpts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	log := rootOpts.logger()
	factory := seed.NewFactory(
		services.NewAuthService(st.Users, log),
		services.NewPostService(st.Posts, log),
		opts.Seed,
		log,
	)
	res, err := factory.Run(cmd.Context(), *opts)
	if err != nil {
		return err
	}

	f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	return f.Table(res, []string{"USERS", "POSTS", "COMMENTS", "LIKES"}, [][]string{{
		itoa(res.Users), itoa(res.Posts), itoa(res.Comments), itoa(res.Likes),
	}})
}
