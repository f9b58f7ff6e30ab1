package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/feral-file/ff-social/internal/domain"
	"github.com/feral-file/ff-social/internal/graph"
	"github.com/feral-file/ff-social/internal/media"
	"github.com/feral-file/ff-social/internal/route"
	"github.com/feral-file/ff-social/internal/session"
)

func feedCmd(a *app) *cobra.Command {
	var pages int
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the global feed, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := session.NewHomeFeedView(cmd.Context(), a.graph, a.clock)
			defer view.Close()

			res, err := view.Load(a.opts.address)
			if err != nil {
				return err
			}
			printFeed(cmd.OutOrStdout(), res.Data, func(total int) *session.Pager {
				return a.pager(total, pages)
			})
			return nil
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 1, "Number of pages to show")
	return cmd
}

func profileCmd(a *app) *cobra.Command {
	var pages int
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or create profiles",
	}

	show := &cobra.Command{
		Use:   "show [profile-id]",
		Short: "Show a profile and its posts (the acting profile when no id is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			profileID := a.opts.profileID
			if len(args) == 1 {
				profileID = args[0]
			}
			if profileID == "" {
				actor, err := a.actor(ctx, true)
				if err != nil {
					return err
				}
				profileID = actor.ProfileID
			}

			profile, found, err := a.graph.Profile(ctx, profileID)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: profile %s", domain.ErrNotFound, profileID)
			}
			followers, err := a.graph.FollowersCount(ctx, profileID)
			if err != nil {
				return err
			}

			view := session.NewProfileFeedView(ctx, a.graph, a.clock)
			defer view.Close()
			res, err := view.Load(session.ProfileFeedInput{ProfileID: profileID, Viewer: a.opts.address})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n", profile.Username, profile.ID)
			if profile.Description != "" {
				fmt.Fprintf(out, "%s\n", profile.Description)
			}
			if profile.AvatarURL != "" {
				fmt.Fprintf(out, "avatar: %s\n", media.GatewayURL(media.NormalizeAvatarURL(profile.AvatarURL), a.cfg.Media.IPFSGateway))
			}
			fmt.Fprintf(out, "owner: %s  followers: %d\n\n", profile.Owner, followers)
			printFeed(out, res.Data, func(total int) *session.Pager {
				return a.pager(total, pages)
			})
			return nil
		},
	}
	show.Flags().IntVar(&pages, "pages", 1, "Number of pages of posts to show")

	cmd.AddCommand(show, createProfileCmd(a))
	return cmd
}

func followingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "following [address]",
		Short: "List the profiles an account follows",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address := a.opts.address
			if len(args) == 1 {
				address = args[0]
			}
			if address == "" {
				return fmt.Errorf("an address is required")
			}

			view := session.NewFollowingView(cmd.Context(), a.graph, a.clock)
			defer view.Close()
			res, err := view.Load(address)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, f := range res.Data {
				fmt.Fprintf(w, "%s\t%s\ttoken %s\n", f.Profile.Username, f.Profile.ID, domain.ShortID(f.TokenID))
			}
			return w.Flush()
		},
	}
}

func leaderboardCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank profiles by followers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := session.NewLeaderboardView(cmd.Context(), a.graph, a.clock)
			defer view.Close()
			res, err := view.Load(limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range res.Data {
				fmt.Fprintf(w, "#%d\t%s\t%d followers\t%s\n", e.Rank, e.Profile.Username, e.Followers, e.Profile.ID)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of rows")
	return cmd
}

func showPostCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <post-id>",
		Short: "Show a post with its likes and comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			post, found, err := a.graph.Post(ctx, args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: post %s", domain.ErrNotFound, args[0])
			}
			likes, err := a.graph.LikeState(ctx, a.opts.address, post.ID)
			if err != nil {
				return err
			}

			view := session.NewCommentsView(ctx, a.graph, a.clock)
			defer view.Close()
			res, err := view.Load(post.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n%s\n", formatTime(post.CreatedMs), post.Content)
			liked := ""
			if likes.Liked() {
				liked = " (liked)"
			}
			fmt.Fprintf(out, "%d likes%s, %d comments\n\n", likes.Count, liked, len(res.Data))
			for _, c := range res.Data {
				fmt.Fprintf(out, "  %s %s: %s\n", formatTime(c.CreatedMs), domain.ShortID(c.Author), c.Content)
			}
			return nil
		},
	}
}

func routeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <hash>",
		Short: "Parse a navigation hash",
		Args:  cobra.ExactArgs(1),
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			r := route.Parse(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.Name, r)
			return nil
		},
	}
}

// pager reveals the requested number of pages of a list of total entries
func (a *app) pager(total, pages int) *session.Pager {
	p := session.NewPager(a.cfg.Session.PageSize)
	p.SetTotal(total)
	for i := 1; i < pages; i++ {
		p.ShowMore()
	}
	return p
}

func printFeed(out io.Writer, feed *graph.Feed, newPager func(total int) *session.Pager) {
	if feed == nil || len(feed.Posts) == 0 {
		fmt.Fprintln(out, "No posts yet.")
		return
	}

	pager := newPager(len(feed.Posts))
	for _, post := range feed.Posts[:pager.Visible()] {
		author := domain.ShortID(post.Author)
		if p, ok := feed.Author(post); ok && p.Username != "" {
			author = p.Username
		}
		own := ""
		if feed.IsOwn(post.ID) {
			own = " (you)"
		}
		fmt.Fprintf(out, "%s  %s%s  %s\n", formatTime(post.CreatedMs), author, own, post.ID)
		fmt.Fprintf(out, "    %s\n", strings.ReplaceAll(post.Content, "\n", "\n    "))
	}
	if pager.HasMore() {
		fmt.Fprintf(out, "... %d more\n", len(feed.Posts)-pager.Visible())
	}
}

func formatTime(ms domain.UnixMs) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(int64(ms)).UTC().Format(time.RFC3339)
}
