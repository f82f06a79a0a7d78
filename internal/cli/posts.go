package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"socialfeed/internal/models"
)

type postsListOptions struct {
	user int
}

// NewPostsCommand creates the posts command group.
func NewPostsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Inspect posts",
	}

	listOpts := &postsListOptions{}
	list := &cobra.Command{
		Use:   "list",
		Short: "List posts in storage order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPostsList(rootOpts, listOpts, cmd)
		},
	}
	list.Flags().IntVar(&listOpts.user, "user", 0, "only posts by this user id")
	cmd.AddCommand(list)

	return cmd
}

type postRow struct {
	ID        string                      `json:"id" yaml:"id"`
	UserID    int                         `json:"user_id" yaml:"user_id"`
	Username  string                      `json:"username" yaml:"username"`
	Timestamp string                      `json:"timestamp" yaml:"timestamp"`
	Likes     int                         `json:"likes" yaml:"likes"`
	Comments  int                         `json:"comments" yaml:"comments"`
	Reactions map[models.ReactionKind]int `json:"reactions" yaml:"reactions"`
	Content   string                      `json:"content" yaml:"content"`
}

const previewLength = 40

func runPostsList(opts *RootOptions, listOpts *postsListOptions, cmd *cobra.Command) error {
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	posts, err := st.Posts.List(cmd.Context())
	if err != nil {
		return err
	}

	var out []postRow
	var rows [][]string
	for _, p := range posts {
		if listOpts.user != 0 && p.UserID != listOpts.user {
			continue
		}
		ts := p.Timestamp.UTC().Format(time.RFC3339)
		out = append(out, postRow{
			ID:        p.ID,
			UserID:    p.UserID,
			Username:  p.Username,
			Timestamp: ts,
			Likes:     p.LikeCount(),
			Comments:  len(p.Comments),
			Reactions: p.Reactions.Counts(),
			Content:   p.Content,
		})
		rows = append(rows, []string{
			p.ID, p.Username, ts,
			strconv.Itoa(p.LikeCount()), strconv.Itoa(len(p.Comments)),
			preview(p.Content),
		})
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Table(out, []string{"ID", "AUTHOR", "POSTED", "LIKES", "COMMENTS", "CONTENT"}, rows)
}

func preview(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	r := []rune(content)
	if len(r) <= previewLength {
		return content
	}
	return string(r[:previewLength-3]) + "..."
}
