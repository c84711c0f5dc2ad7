package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/render"
)

// anchorInput is the JSON read by the anchor command.
type anchorInput struct {
	Active []models.ChartElement `json:"active"`
	Cursor models.Point          `json:"cursor"`
}

func newAnchorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anchor [elements.json]",
		Short: "Select the tooltip anchor for active chart elements",
		Long: `anchor reads {"active": [{"series": "Estimate", "position": {"x": 1, "y": 2}}],
"cursor": {"x": 0, "y": 0}} from a file or stdin and prints the anchor point.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			var in anchorInput
			if err := json.NewDecoder(r).Decode(&in); err != nil {
				return fmt.Errorf("invalid input: %w", err)
			}

			anchor := cfg.BuildOptions().Selector().Select(in.Active, in.Cursor)
			return render.WriteJSON(cmd.OutOrStdout(), anchor, false)
		},
	}
	return cmd
}
