package commands

import (
	"errors"
	"fmt"

	"github.com/denchenko/pa/internal/core/app"
	"github.com/denchenko/pa/internal/core/domain"
	"github.com/denchenko/pa/internal/core/state"
	"github.com/denchenko/pa/internal/format/ascii"
	"github.com/denchenko/pa/internal/link"
	"github.com/denchenko/pa/internal/log"
	"github.com/spf13/cobra"
)

type postsFlags struct {
	skip   int
	limit  int
	search string
	tag    string
	sortBy string
	order  string
}

func Posts(appInstance *app.App, linker *link.Linker) *cobra.Command {
	var flags postsFlags

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List, search and manage posts",
		Long: `List one page of posts. A search query takes precedence over a tag,
and a tag over the plain list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyPostsFlags(cmd, appInstance.State(), flags); err != nil {
				return err
			}

			return listPosts(cmd, appInstance)
		},
	}

	cmd.Flags().IntVar(&flags.skip, "skip", 0, "number of posts to skip")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "page size")
	cmd.Flags().StringVar(&flags.search, "search", "", "search query")
	cmd.Flags().StringVar(&flags.tag, "tag", "", "show posts with this tag")
	cmd.Flags().StringVar(&flags.sortBy, "sort-by", "", "field to sort by")
	cmd.Flags().StringVar(&flags.order, "order", string(state.SortAsc), "sort order (asc or desc)")

	cmd.AddCommand(
		postsAdd(appInstance),
		postsEdit(appInstance),
		postsDelete(appInstance),
		postsShow(appInstance),
		postsBrowse(appInstance, linker),
	)

	return cmd
}

func applyPostsFlags(cmd *cobra.Command, st *state.Store, flags postsFlags) error {
	order := state.SortOrder(flags.order)
	if !order.Valid() {
		return fmt.Errorf("invalid sort order %q", flags.order)
	}

	if cmd.Flags().Changed("limit") {
		if flags.limit <= 0 {
			return fmt.Errorf("limit must be positive, got %d", flags.limit)
		}
		st.Pagination.SetLimit(flags.limit)
	}
	st.Pagination.SetSkip(flags.skip)
	st.Filter.SetSearchQuery(flags.search)
	st.Filter.SetSelectedTag(flags.tag)
	st.Filter.SetSortBy(flags.sortBy)
	st.Filter.SetSortOrder(order)

	return nil
}

func listPosts(cmd *cobra.Command, appInstance *app.App) error {
	var v domain.PostsView
	err := log.WithSpinner("Loading posts...", func() error {
		var err error
		v, err = appInstance.PostsView(cmd.Context())

		return err
	})
	if err != nil {
		return fmt.Errorf("failed to load posts: %w", err)
	}

	out, err := ascii.FormatPosts(v, appInstance.State().Pagination.Get())
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), out)

	return nil
}

func postsAdd(appInstance *app.App) *cobra.Command {
	var title, body string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a post as the configured user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if title == "" {
				return errors.New("title is required")
			}

			post, err := appInstance.AddPost(cmd.Context(), title, body)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created post #%d: %s\n", post.ID, post.Title)

			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "post title")
	cmd.Flags().StringVar(&body, "body", "", "post body")

	return cmd
}

func postsEdit(appInstance *app.App) *cobra.Command {
	var title, body string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update the title or body of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("post", args[0])
			if err != nil {
				return err
			}

			var req domain.UpdatePostRequest
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("body") {
				req.Body = &body
			}
			if req.Title == nil && req.Body == nil {
				return errors.New("nothing to update, pass --title or --body")
			}

			post, err := appInstance.UpdatePost(cmd.Context(), id, req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated post #%d: %s\n", post.ID, post.Title)

			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&body, "body", "", "new body")

	return cmd
}

func postsDelete(appInstance *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("post", args[0])
			if err != nil {
				return err
			}

			if err := appInstance.DeletePost(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted post #%d\n", id)

			return nil
		},
	}
}

func postsShow(appInstance *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a post with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("post", args[0])
			if err != nil {
				return err
			}

			appInstance.State().Selection.SelectPost(id)

			var detail domain.PostDetail
			err = log.WithSpinner("Loading post...", func() error {
				var err error
				detail, err = appInstance.PostDetail(cmd.Context(), id)

				return err
			})
			if err != nil {
				return fmt.Errorf("failed to load post: %w", err)
			}

			out, err := ascii.FormatPostDetail(detail)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), out)

			return nil
		},
	}
}

func postsBrowse(appInstance *app.App, linker *link.Linker) *cobra.Command {
	return &cobra.Command{
		Use:   "browse <id>",
		Short: "Open a post in your default browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("post", args[0])
			if err != nil {
				return err
			}

			if !linker.Configured() {
				return errors.New("post URL template is not configured (PA_POST_URL_TEMPLATE)")
			}

			post, err := appInstance.Post(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get post: %w", err)
			}

			postURL, err := linker.MakeURL(post)
			if err != nil {
				return fmt.Errorf("failed to generate post URL: %w", err)
			}

			if err := browserOpen(postURL); err != nil {
				return fmt.Errorf("failed to open browser: %w", err)
			}

			return nil
		},
	}
}
