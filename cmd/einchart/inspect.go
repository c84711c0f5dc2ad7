package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/render"
)

func newInspectCmd() *cobra.Command {
	var (
		outputPath string
		pretty     bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [export.xlsx]",
		Short: "Read an exported workbook back as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}

			wb, err := einchart.Inspect(args[0])
			if err != nil {
				return fmt.Errorf("inspection failed: %w", err)
			}

			if outputPath == "" {
				return render.WriteJSON(cmd.OutOrStdout(), wb, pretty)
			}
			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			defer f.Close()
			return render.WriteJSON(f, wb, pretty)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}
