package main

import (
	"fmt"
	"os"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/seed"
	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the work shift, holidays, employees and payroll defaults",
	RunE: func(cmd *cobra.Command, _ []string) error {
		f, err := os.Open(seedFile)
		if err != nil {
			return fmt.Errorf("open seed file: %w", err)
		}
		defer f.Close()

		doc, err := seed.Parse(f)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := seed.Apply(cmd.Context(), seed.Repositories{
			Tx:            a.tx,
			Shifts:        a.shiftRepo,
			Holidays:      a.holidayRepo,
			Employees:     a.employeeRepo,
			Configuration: a.configurationRepo,
		}, doc)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Seeded shift %s, %d holidays (%d already present), %d employees\n",
			summary.Shift, summary.HolidaysCreated, summary.HolidaysSkipped, summary.Employees)
		if summary.PayrollInstalled {
			fmt.Fprintln(cmd.OutOrStdout(), "Installed default payroll configuration")
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "config/seed.yaml", "seed YAML file")
}
