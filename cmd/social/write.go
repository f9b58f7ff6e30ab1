package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/graph"
	"github.com/feral-file/ff-social/internal/media"
	"github.com/feral-file/ff-social/internal/mutation"
	"github.com/feral-file/ff-social/internal/session"
)

func postCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Show, publish, edit or delete posts",
	}

	publish := &cobra.Command{
		Use:   "publish <content>",
		Short: "Publish a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()
			actor, err := a.actor(ctx, true)
			if err != nil {
				return err
			}

			view := session.NewHomeFeedView(ctx, a.graph, a.clock)
			defer view.Close()
			res, err := view.Load(actor.Address)
			if err != nil {
				return err
			}

			// the provisional post is shown until the feed is re-derived
			posts := mutation.NewOptimistic(res.Data.Posts)
			if err := posts.Apply(mutation.Prepend(mutation.ProvisionalPost(actor, args[0], a.clock.Now()))); err != nil {
				return err
			}
			pending := *res.Data
			pending.Posts = posts.Items()
			fmt.Fprintln(w, "Publishing:")
			printFeed(w, &pending, func(total int) *session.Pager {
				return a.pager(total, 1)
			})

			out := a.mutator.PublishPost(ctx, actor, args[0],
				mutation.WithPending(posts),
				mutation.WithRefetch(func(context.Context, mutation.Outcome) error {
					res, err := view.Refresh()
					if err != nil {
						return err
					}
					posts.Replace(res.Data.Posts)
					return nil
				}),
			)
			if err := report(w, out); err != nil {
				return err
			}
			if out.RefetchErr == nil {
				fmt.Fprintf(w, "feed: %d posts\n", len(posts.Items()))
			}
			return nil
		},
	}

	edit := &cobra.Command{
		Use:   "edit <post-id> <content>",
		Short: "Replace the content of a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := a.actor(ctx, true)
			if err != nil {
				return err
			}

			var post *domain.Post
			out := a.mutator.EditPost(ctx, actor, args[0], args[1],
				mutation.WithRefetch(func(ctx context.Context, _ mutation.Outcome) error {
					var err error
					post, _, err = a.graph.Post(ctx, args[0])
					return err
				}),
			)
			if err := report(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if post != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "content: %s\n", post.Content)
			}
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := a.actor(ctx, true)
			if err != nil {
				return err
			}

			visible := false
			out := a.mutator.DeletePost(ctx, actor, args[0],
				mutation.WithRefetch(func(ctx context.Context, _ mutation.Outcome) error {
					var err error
					_, visible, err = a.graph.Post(ctx, args[0])
					return err
				}),
			)
			if err := report(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if visible {
				fmt.Fprintln(cmd.OutOrStdout(), "post is still visible, the store has not caught up yet")
			}
			return nil
		},
	}

	cmd.AddCommand(showPostCmd(a), publish, edit, remove)
	return cmd
}

func commentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> <content>",
		Short: "Comment on a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := a.actor(ctx, true)
			if err != nil {
				return err
			}

			view := session.NewCommentsView(ctx, a.graph, a.clock)
			defer view.Close()

			out := a.mutator.AddComment(ctx, actor, args[0], args[1],
				mutation.WithRefetch(func(context.Context, mutation.Outcome) error {
					_, err := view.Load(args[0])
					return err
				}),
			)
			if err := report(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d comments\n", len(view.Current().Data))
			return nil
		},
	}
}

// followingRefetch re-derives the following list of the actor after a follow or unfollow
func (a *app) followingRefetch(ctx context.Context, actor mutation.Actor) (*session.FollowingView, mutation.Option) {
	view := session.NewFollowingView(ctx, a.graph, a.clock)
	return view, mutation.WithRefetch(func(context.Context, mutation.Outcome) error {
		_, err := view.Load(actor.Address)
		return err
	})
}

func followCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "follow <profile-id>",
		Short: "Follow a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := a.actor(ctx, true)
			if err != nil {
				return err
			}
			view, refetch := a.followingRefetch(ctx, actor)
			defer view.Close()

			out := a.mutator.Follow(ctx, actor, args[0], refetch)
			if err := report(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			printToken(cmd.OutOrStdout(), "follow", out)
			printFollowing(cmd.OutOrStdout(), view.Current())
			return nil
		},
	}
}

func unfollowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unfollow <profile-id>",
		Short: "Unfollow a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := a.actor(ctx, true)
			if err != nil {
				return err
			}
			tokenID, found, err := a.graph.FindFollowToken(ctx, actor.Address, args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%s does not follow %s", actor.Address, args[0])
			}
			view, refetch := a.followingRefetch(ctx, actor)
			defer view.Close()

			if err := report(cmd.OutOrStdout(), a.mutator.Unfollow(ctx, actor, tokenID, refetch)); err != nil {
				return err
			}
			printFollowing(cmd.OutOrStdout(), view.Current())
			return nil
		},
	}
}

func printFollowing(w io.Writer, res session.Result[[]graph.Following]) {
	if !res.Loaded || res.Err != nil {
		return
	}
	fmt.Fprintf(w, "following %d profiles\n", len(res.Data))
}

// likeRefetch re-reads the like counter and the actor's like token of a post
func (a *app) likeRefetch(actor mutation.Actor, postID string, state *graph.LikeState) mutation.Option {
	return mutation.WithRefetch(func(ctx context.Context, _ mutation.Outcome) error {
		s, err := a.graph.LikeState(ctx, actor.Address, postID)
		if err != nil {
			return err
		}
		*state = s
		return nil
	})
}

func printLikes(w io.Writer, out mutation.Outcome, state graph.LikeState) {
	if out.RefetchErr != nil {
		return
	}
	liked := ""
	if state.Liked() {
		liked = " (liked)"
	}
	fmt.Fprintf(w, "%d likes%s\n", state.Count, liked)
}

func likeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := a.actor(ctx, true)
			if err != nil {
				return err
			}
			var state graph.LikeState
			out := a.mutator.Like(ctx, actor, args[0], a.likeRefetch(actor, args[0], &state))
			if err := report(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			printToken(cmd.OutOrStdout(), "like", out)
			printLikes(cmd.OutOrStdout(), out, state)
			return nil
		},
	}
}

func unlikeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unlike <post-id>",
		Short: "Remove a like",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			actor, err := a.actor(ctx, true)
			if err != nil {
				return err
			}
			state, err := a.graph.LikeState(ctx, actor.Address, args[0])
			if err != nil {
				return err
			}
			if !state.Liked() {
				return fmt.Errorf("%s has not liked %s", actor.Address, args[0])
			}
			out := a.mutator.Unlike(ctx, actor, state.TokenID, a.likeRefetch(actor, args[0], &state))
			if err := report(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			printLikes(cmd.OutOrStdout(), out, state)
			return nil
		},
	}
}

func createProfileCmd(a *app) *cobra.Command {
	var in mutation.ProfileInput
	var avatarFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the profile of the acting account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			actor, err := a.actor(ctx, false)
			if err != nil {
				return err
			}
			if avatarFile != "" {
				in.AvatarURL, err = a.pinAvatar(ctx, avatarFile)
				if err != nil {
					return err
				}
			}

			var profile *domain.Profile
			out := a.mutator.CreateProfile(ctx, actor, in,
				mutation.WithRefetch(func(ctx context.Context, out mutation.Outcome) error {
					id := out.ObjectID
					if id == "" {
						var found bool
						var err error
						id, found, err = a.graph.ResolveProfileID(ctx, actor.Address)
						if err != nil || !found {
							return err
						}
					}
					var err error
					profile, _, err = a.graph.Profile(ctx, id)
					return err
				}),
			)
			if err := report(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			switch {
			case profile != nil:
				fmt.Fprintf(cmd.OutOrStdout(), "profile: %s (%s)\n", profile.ID, profile.Username)
			case out.ObjectID != "":
				fmt.Fprintf(cmd.OutOrStdout(), "profile: %s\n", out.ObjectID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "Username (3 to 24 characters)")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description (1 to 250 characters)")
	cmd.Flags().StringVar(&in.AvatarURL, "avatar-url", "", "Avatar URL (ipfs://, ar:// or https://)")
	cmd.Flags().StringVar(&avatarFile, "avatar-file", "", "Avatar image to pin on IPFS")
	cmd.MarkFlagsMutuallyExclusive("avatar-url", "avatar-file")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func avatarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "avatar <file>",
		Short: "Pin an avatar image on IPFS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := a.pinAvatar(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", ref, media.GatewayURL(ref, a.cfg.Media.IPFSGateway))
			return nil
		},
	}
}

func (a *app) pinAvatar(ctx context.Context, path string) (string, error) {
	name, data, err := media.LoadAvatar(a.fs, path, a.cfg.Media.MaxFileSize)
	if err != nil {
		return "", err
	}
	return a.pinner.Pin(ctx, name, data)
}

// report prints the outcome of a mutation and turns failures into an error
func report(w io.Writer, out mutation.Outcome) error {
	if !out.OK() {
		if errors.Is(out.Err, domain.ErrValidation) {
			return out.Err
		}
		return fmt.Errorf("%s failed: %s", out.Action, out.Message())
	}
	fmt.Fprintf(w, "%s confirmed in %s\n", out.Action, out.Digest)
	if out.RefetchErr != nil {
		fmt.Fprintf(w, "warning: views could not be refreshed: %v\n", out.RefetchErr)
	}
	return nil
}

func printToken(w io.Writer, kind string, out mutation.Outcome) {
	if out.ObjectID == "" {
		fmt.Fprintf(w, "%s token not visible yet\n", kind)
		return
	}
	fmt.Fprintf(w, "%s token: %s\n", kind, out.ObjectID)
}
