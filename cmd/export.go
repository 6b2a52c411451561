package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/munitax/internal/export"
	"github.com/sells-group/munitax/internal/filing"
)

var (
	exportFile string
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a filing breakdown as an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := filing.Load(exportFile)
		if err != nil {
			return err
		}

		breakdown, err := newEngine().ComputeFilingBreakdown(*in)
		if err != nil {
			return eris.Wrap(err, "export compute")
		}

		if err := export.Write(in, breakdown, exportOut); err != nil {
			return err
		}
		zap.L().Info("workbook written", zap.String("path", exportOut))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFile, "file", "f", "", "filing input document (yaml or json)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "breakdown.xlsx", "output workbook path")
	_ = exportCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(exportCmd)
}
