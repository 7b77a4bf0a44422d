package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cboard-backend/internal/app"
	"cboard-backend/internal/sheets"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize access to the spreadsheet and store the OAuth token",
	Long: `Runs the installed-app consent flow for the client secret in CREDENTIALS_FILE.
Open the printed URL in a browser; the token is stored in the configured token store.
Not needed when CREDENTIALS_FILE is a service account key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, closeStore, err := app.NewStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		out := cmd.OutOrStdout()
		tok, err := sheets.Authorize(ctx, cfg.Sheets.CredentialsFile, s, cfg.Sheets.TokenKey, func(authURL string) {
			fmt.Fprintf(out, "Open this URL in your browser to authorize access:\n\n%s\n\n", authURL)
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Token stored (expires %s)\n", tok.Expiry.Format("2006-01-02 15:04"))
		return nil
	},
}
