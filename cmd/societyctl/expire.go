package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"societyhub/internal/app"
	"societyhub/internal/pkg/clock"
)

var expireCmd = &cobra.Command{
	Use:   "expire-preapprovals",
	Short: "Mark pending pre-approvals dated before today as expired",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		a := app.New(cfg, db, clock.NewSystem())
		n, err := a.PreApprovals.ExpireOverdue(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "expired %d pre-approval(s) before %s\n", n, a.PreApprovals.Today())
		return nil
	},
}
