package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the default admin and user accounts if they are missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		// a.close waits for the created events to be published.
		a.events.Start(ctx)

		n, err := a.seed(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d account(s)\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
