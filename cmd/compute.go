package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/munitax/internal/filing"
	"github.com/sells-group/munitax/internal/format"
	"github.com/sells-group/munitax/internal/model"
)

var (
	computeFile   string
	computeJSON   bool
	computeRecord bool
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute a filing breakdown from an input document",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("compute"); err != nil {
			return err
		}
		ctx := cmd.Context()

		in, err := filing.Load(computeFile)
		if err != nil {
			return err
		}

		breakdown, err := newEngine().ComputeFilingBreakdown(*in)
		if err != nil {
			return eris.Wrap(err, "compute")
		}

		if computeRecord {
			digest, err := filing.Digest(in)
			if err != nil {
				return err
			}
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return err
			}
			run := &model.Run{
				Filer:     in.Filer,
				Period:    in.Period,
				Digest:    digest,
				Status:    model.RunStatusComplete,
				Input:     in,
				Breakdown: breakdown,
			}
			if err := st.CreateRun(ctx, run); err != nil {
				return eris.Wrap(err, "record run")
			}
			zap.L().Info("run recorded", zap.String("id", run.ID), zap.String("digest", digest))
		}

		if computeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(breakdown)
		}

		printBreakdown(breakdown)
		return nil
	},
}

func init() {
	computeCmd.Flags().StringVarP(&computeFile, "file", "f", "", "filing input document (yaml or json)")
	computeCmd.Flags().BoolVar(&computeJSON, "json", false, "emit the breakdown as JSON")
	computeCmd.Flags().BoolVar(&computeRecord, "record", false, "record the run in the audit store")
	_ = computeCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(computeCmd)
}

func printBreakdown(b *model.FilingBreakdown) {
	fmt.Printf("Jurisdiction:                %s\n", b.Jurisdiction)
	fmt.Printf("Total add-backs:             %s\n", format.Currency(b.Reconciliation.TotalAddBacks))
	fmt.Printf("Total deductions:            %s\n", format.Currency(b.Reconciliation.TotalDeductions))
	fmt.Printf("Adjusted municipal income:   %s\n", format.Currency(b.Reconciliation.AdjustedMunicipalIncome))
	fmt.Printf("Property factor:             %s\n", format.Percent(b.Apportionment.PropertyPct))
	fmt.Printf("Payroll factor:              %s\n", format.Percent(b.Apportionment.PayrollPct))
	fmt.Printf("Sales factor:                %s\n", format.Percent(b.Apportionment.SalesPct))
	fmt.Printf("Final apportionment:         %s\n", format.Percent(b.Apportionment.FinalPct))
	fmt.Printf("Jurisdiction taxable income: %s\n", format.Currency(b.JurisdictionTaxableIncome))

	if len(b.Warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range b.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
}
