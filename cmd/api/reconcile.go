package main

import (
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/reconciliation"
	"github.com/spf13/cobra"
)

var reconcileDate string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile attendance for one work date",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.reconciliation.Reconcile(cmd.Context(), reconciliation.ReconcileRequest{Date: reconcileDate})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		for _, f := range result.Failures {
			fmt.Fprintf(cmd.OutOrStdout(), "  failed %s: %s\n", f.EmployeeID, f.Reason)
		}
		return nil
	},
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileDate, "date", "", "work date to reconcile (YYYY-MM-DD, defaults to today)")
}
