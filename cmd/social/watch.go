package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/feral-file/ff-social/internal/graph"
	"github.com/feral-file/ff-social/internal/session"
)

func watchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the global feed, refreshing in the background until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			view := session.NewHomeFeedView(ctx, a.graph, a.clock)
			defer view.Close()

			pager := session.NewPager(a.cfg.Session.PageSize)
			var newest string
			view.OnChange(func(res session.Result[*graph.Feed]) {
				if res.Err != nil {
					fmt.Fprintf(out, "refresh failed: %v\n", res.Err)
					return
				}
				if len(res.Data.Posts) == 0 || res.Data.Posts[0].ID == newest {
					return
				}
				newest = res.Data.Posts[0].ID
				printFeed(out, res.Data, func(total int) *session.Pager {
					pager.SetTotal(total)
					return pager
				})
			})

			if _, err := view.Load(a.opts.address); err != nil {
				return err
			}
			if err := view.StartAutoRefresh(a.cfg.Session.RefreshInterval); err != nil {
				return err
			}

			<-ctx.Done()
			return nil
		},
	}
}
