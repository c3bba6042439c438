package main

import (
	"fmt"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/payroll"
	"github.com/spf13/cobra"
)

var (
	payrollMonth int
	payrollYear  int
)

var payrollCmd = &cobra.Command{
	Use:   "payroll",
	Short: "Calculate salary records for one month",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.payroll.Run(cmd.Context(), payroll.RunPayrollRequest{Month: payrollMonth, Year: payrollYear})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Payroll %02d/%d: %d calculated, %d skipped (paid), %d failed\n",
			result.Month, result.Year, result.Calculated, len(result.Skipped), len(result.Failures))
		for _, id := range result.NegativeNet {
			fmt.Fprintf(out, "  negative net salary: %s\n", id)
		}
		for _, f := range result.Failures {
			fmt.Fprintf(out, "  failed %s: %s\n", f.EmployeeID, f.Reason)
		}
		return nil
	},
}

func init() {
	payrollCmd.Flags().IntVar(&payrollMonth, "month", 0, "period month (1-12)")
	payrollCmd.Flags().IntVar(&payrollYear, "year", 0, "period year")
	_ = payrollCmd.MarkFlagRequired("month")
	_ = payrollCmd.MarkFlagRequired("year")
}
