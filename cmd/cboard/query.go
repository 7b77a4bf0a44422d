package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cboard-backend/internal/app"
	"cboard-backend/internal/board"
	"cboard-backend/internal/model"
)

var flyerViews = map[string]func(*board.Service, context.Context) ([]model.Flyer, error){
	"all":      (*board.Service).Flyers,
	"upcoming": (*board.Service).UpcomingFlyers,
	"past":     (*board.Service).PastFlyers,
	"weekly":   (*board.Service).WeeklyFlyers,
	"daily":    (*board.Service).DailyFlyers,
	"trending": (*board.Service).TrendingFlyers,
}

var organizationsCmd = &cobra.Command{
	Use:     "organizations [slug]",
	Aliases: []string{"orgs"},
	Short:   "Print all organizations, or one by slug",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeSource, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeSource()

		if len(args) == 1 {
			org, err := svc.OrganizationBySlug(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), org)
		}

		orgs, err := svc.Organizations(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), orgs)
	},
}

var flyersCmd = &cobra.Command{
	Use:       "flyers [all|upcoming|past|weekly|daily|trending]",
	Short:     "Print flyers, optionally filtered by date",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"all", "upcoming", "past", "weekly", "daily", "trending"},
	RunE: func(cmd *cobra.Command, args []string) error {
		view := "all"
		if len(args) == 1 {
			view = args[0]
		}
		fetch, ok := flyerViews[view]
		if !ok {
			return fmt.Errorf("unknown view %q", view)
		}

		svc, closeSource, err := newService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeSource()

		flyers, err := fetch(svc, cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), flyers)
	},
}

func newService(ctx context.Context) (*board.Service, func() error, error) {
	source, closeSource, err := app.NewSource(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	svc, err := app.NewService(cfg, source, logger)
	if err != nil {
		closeSource()
		return nil, nil, err
	}
	return svc, closeSource, nil
}
