package commands

import (
	"errors"
	"fmt"

	"github.com/denchenko/pa/internal/core/app"
	"github.com/denchenko/pa/internal/core/domain"
	"github.com/denchenko/pa/internal/format/ascii"
	"github.com/denchenko/pa/internal/log"
	"github.com/spf13/cobra"
)

func Comments(appInstance *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments <postId>",
		Short: "List and manage the comments of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID("post", args[0])
			if err != nil {
				return err
			}

			var page domain.Page[domain.Comment]
			err = log.WithSpinner("Loading comments...", func() error {
				var err error
				page, err = appInstance.Comments(cmd.Context(), postID)

				return err
			})
			if err != nil {
				return fmt.Errorf("failed to load comments: %w", err)
			}

			w := cmd.OutOrStdout()
			for _, c := range page.Items {
				fmt.Fprintln(w, ascii.FormatComment(c))
			}
			fmt.Fprintf(w, "%d of %d comments\n", len(page.Items), page.Total)

			return nil
		},
	}

	cmd.AddCommand(
		commentsAdd(appInstance),
		commentsEdit(appInstance),
		commentsDelete(appInstance),
		commentsLike(appInstance),
	)

	return cmd
}

func parseCommentArgs(args []string) (postID, id int, err error) {
	postID, err = parseID("post", args[0])
	if err != nil {
		return 0, 0, err
	}

	id, err = parseID("comment", args[1])
	if err != nil {
		return 0, 0, err
	}

	return postID, id, nil
}

func commentsAdd(appInstance *app.App) *cobra.Command {
	var body string

	cmd := &cobra.Command{
		Use:   "add <postId>",
		Short: "Comment on a post as the configured user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID("post", args[0])
			if err != nil {
				return err
			}
			if body == "" {
				return errors.New("body is required")
			}

			c, err := appInstance.AddComment(cmd.Context(), postID, body)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Added "+ascii.FormatComment(c))

			return nil
		},
	}

	cmd.Flags().StringVar(&body, "body", "", "comment body")

	return cmd
}

func commentsEdit(appInstance *app.App) *cobra.Command {
	var body string

	cmd := &cobra.Command{
		Use:   "edit <postId> <id>",
		Short: "Replace the body of a comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, id, err := parseCommentArgs(args)
			if err != nil {
				return err
			}
			if body == "" {
				return errors.New("body is required")
			}

			c, err := appInstance.UpdateComment(cmd.Context(), postID, id, body)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Updated "+ascii.FormatComment(c))

			return nil
		},
	}

	cmd.Flags().StringVar(&body, "body", "", "new comment body")

	return cmd
}

func commentsDelete(appInstance *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <postId> <id>",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, id, err := parseCommentArgs(args)
			if err != nil {
				return err
			}

			if err := appInstance.DeleteComment(cmd.Context(), postID, id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted comment #%d\n", id)

			return nil
		},
	}
}

func commentsLike(appInstance *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "like <postId> <id>",
		Short: "Like a comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, id, err := parseCommentArgs(args)
			if err != nil {
				return err
			}

			c, err := appInstance.LikeComment(cmd.Context(), postID, id)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Comment #%d now has %d likes\n", c.ID, c.Likes)

			return nil
		},
	}
}
