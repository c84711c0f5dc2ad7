package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/models"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/render"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/source"
)

func newRenderCmd() *cobra.Command {
	var (
		flags      sourceFlags
		outputPath string
		format     string
		inputPath  string
		pretty     bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the chart as HTML, PNG, SVG, XLSX or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd.Flags(), cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			outFormat, err := outputFormat(format, outputPath)
			if err != nil {
				return err
			}

			var chart *models.Chart
			if inputPath != "" {
				chart, err = buildFromFile(inputPath, cfg.BuildOptions())
			} else {
				chart, err = einchart.Build(cmd.Context(), newFetcher(cfg), cfg.BuildOptions())
			}
			if err != nil {
				return fmt.Errorf("build failed: %w", err)
			}

			ro := cfg.RenderOptions()
			ro.Pretty = pretty

			var out io.Writer = cmd.OutOrStdout()
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
				defer f.Close()
				out = f
			}
			if err := render.Write(out, outFormat, chart, ro); err != nil {
				return fmt.Errorf("render failed: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: html, png, svg, xlsx, json (default: from output extension, else json)")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Read CSV from a local file instead of fetching")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

// outputFormat picks the format from the flag, then the output extension.
func outputFormat(format, outputPath string) (render.Format, error) {
	if format != "" {
		return render.ParseFormat(format)
	}
	if ext := filepath.Ext(outputPath); ext != "" {
		return render.ParseFormat(ext)
	}
	return render.FormatJSON, nil
}

func buildFromFile(path string, opts einchart.Options) (*models.Chart, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	text, err := source.ReadText(f)
	if err != nil {
		return nil, err
	}
	chart, err := einchart.BuildText(text, opts)
	if err != nil {
		return nil, err
	}
	chart.Source = filepath.Base(path)
	return chart, nil
}
