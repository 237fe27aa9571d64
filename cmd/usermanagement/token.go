package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var tokenEmail string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a bearer token for an existing account",
	Long: `Print a bearer token for an existing account without going through login.

	usermanagement token --email admin@example.com
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenEmail == "" {
			return errors.New("--email is required")
		}
		ctx := cmd.Context()
		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		tok, acc, err := a.auth.IssueFor(ctx, tokenEmail)
		if err != nil {
			return fmt.Errorf("issue token for %s: %w", tokenEmail, err)
		}
		a.log.Info().Str("account_id", acc.ID).Msg("token issued from cli")
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email of the account to issue a token for")
	rootCmd.AddCommand(tokenCmd)
}
