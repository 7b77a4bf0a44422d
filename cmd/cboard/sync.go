package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cboard-backend/internal/app"
	"cboard-backend/internal/preview"
)

var (
	resolveImages bool
	refreshCache  bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror organizations and flyers from the spreadsheet into Firestore",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, closeClient, err := app.NewSheetsClient(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeClient()

		if refreshCache {
			if err := client.Refresh(); err != nil {
				return err
			}
		}

		fs, err := app.NewFirestore(ctx, cfg)
		if err != nil {
			return err
		}
		defer fs.Close()

		batchID := time.Now().UTC().Format("20060102-150405")
		logger.Info("starting sync", zap.String("batch_id", batchID))

		orgs, err := client.Organizations(ctx)
		if err != nil {
			return err
		}
		flyers, err := client.Flyers(ctx)
		if err != nil {
			return err
		}

		if resolveImages || cfg.ResolveImages {
			flyers = preview.NewResolver(nil, logger).Resolve(ctx, flyers)
		}

		if err := fs.ReplaceOrganizations(ctx, orgs, batchID); err != nil {
			return fmt.Errorf("storing organizations: %w", err)
		}
		logger.Info("stored organizations", zap.Int("count", len(orgs)))

		if err := fs.ReplaceFlyers(ctx, flyers, batchID); err != nil {
			return fmt.Errorf("storing flyers: %w", err)
		}
		logger.Info("stored flyers", zap.Int("count", len(flyers)))

		fmt.Fprintf(cmd.OutOrStdout(), "Synced %d organizations and %d flyers (batch %s)\n", len(orgs), len(flyers), batchID)
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&refreshCache, "refresh", false, "drop cached ranges and read the spreadsheet directly")
	syncCmd.Flags().BoolVar(&resolveImages, "resolve-images", false, "fill missing flyer images from post pages before storing")
}
