package main

import (
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/unbound-force/covtree/internal/config"
	"github.com/unbound-force/covtree/internal/engine"
	"github.com/unbound-force/covtree/internal/export"
	"github.com/unbound-force/covtree/internal/goprofile"
	"github.com/unbound-force/covtree/internal/report"
)

// logger is the application-wide structured logger (writes to stderr).
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
})

// Set by build flags.
var version = "dev"

// reportVersion is the version of the JSON output schema.
const reportVersion = "1.0.0"

func main() {
	root := &cobra.Command{
		Use:   "covtree",
		Short: "covtree — navigable reports from segment-based coverage exports",
		Long: `Covtree resolves a compiler toolchain's segment-based coverage
export into line verdicts, per-file statistics, and directory
rollups, and renders the resulting tree.`,
		Version: version,
	}

	root.AddCommand(newReportCmd())
	root.AddCommand(newGoProfileCmd())
	root.AddCommand(newSchemaCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// reportParams holds the parsed flags for the report command.
type reportParams struct {
	inputPath   string
	format      string
	interactive bool
	cfg         config.Config
	stdout      io.Writer
}

// runReport is the extracted, testable body of the report command.
func runReport(p reportParams) error {
	if p.format != "text" && p.format != "json" {
		return fmt.Errorf("invalid format %q: must be 'text' or 'json'", p.format)
	}

	data, err := os.ReadFile(p.inputPath)
	if err != nil {
		return fmt.Errorf("reading export: %w", err)
	}

	logger.Info("loading coverage export", "input", p.inputPath)
	payload, err := export.Load(data)
	if err != nil {
		return err
	}

	rpt, err := engine.Build(payload, p.cfg, engine.Options{})
	if err != nil {
		return err
	}

	logger.Info("report built",
		"files", countFiles(rpt),
		"lines_covered", rpt.Totals.LinesCovered,
		"lines_total", rpt.Totals.LinesTotal)
	for _, d := range rpt.Diagnostics {
		logger.Warn("recovered", "code", string(d.Code), "detail", d.Detail)
	}

	if p.interactive {
		return runInteractive(rpt, p.cfg.Thresholds.Cuts())
	}

	switch p.format {
	case "json":
		return report.WriteJSON(p.stdout, rpt, reportVersion)
	default:
		return report.WriteText(p.stdout, rpt, p.cfg.Thresholds.Cuts())
	}
}

func newReportCmd() *cobra.Command {
	var (
		format      string
		interactive bool
		configPath  string
		sourceRoot  string
		pathFilter  string
		low         float64
		high        float64
		workers     int
	)

	cmd := &cobra.Command{
		Use:   "report [export.json]",
		Short: "Build a coverage report from a segment export",
		Long: `Resolve a JSON coverage export into per-line verdicts and
directory rollups, and print the result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, sourceRoot, pathFilter, low, high, workers)
			if err != nil {
				return err
			}
			return runReport(reportParams{
				inputPath:   args[0],
				format:      format,
				interactive: interactive,
				cfg:         cfg,
				stdout:      os.Stdout,
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "text",
		"output format: text or json")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"launch interactive TUI for browsing the tree")
	cmd.Flags().StringVar(&configPath, "config", "",
		"path to .covtree.yaml (default: flags and built-in defaults)")
	cmd.Flags().StringVarP(&sourceRoot, "source-root", "p", "",
		"path prefix to group files under")
	cmd.Flags().StringVar(&pathFilter, "path-filter", "",
		"only report files whose path starts with this prefix")
	cmd.Flags().Float64Var(&low, "low-threshold", -1,
		"ratio below which coverage rates Low (default from config)")
	cmd.Flags().Float64Var(&high, "high-threshold", -1,
		"ratio at or above which coverage rates High (default from config)")
	cmd.Flags().IntVar(&workers, "workers", 0,
		"per-file resolution workers (0 = one per CPU)")

	return cmd
}

// goProfileParams holds the parsed flags for the goprofile command.
type goProfileParams struct {
	profilePath string
	format      string
	cfg         config.Config
	stdout      io.Writer
}

// runGoProfile is the extracted, testable body of the goprofile
// command.
func runGoProfile(p goProfileParams) error {
	if p.format != "text" && p.format != "json" {
		return fmt.Errorf("invalid format %q: must be 'text' or 'json'", p.format)
	}

	logger.Info("importing Go cover profile", "profile", p.profilePath)
	files, err := goprofile.Parse(p.profilePath)
	if err != nil {
		return err
	}

	rpt, err := engine.FromFiles(files, p.cfg)
	if err != nil {
		return err
	}

	logger.Info("report built", "files", len(files))

	switch p.format {
	case "json":
		return report.WriteJSON(p.stdout, rpt, reportVersion)
	default:
		return report.WriteText(p.stdout, rpt, p.cfg.Thresholds.Cuts())
	}
}

func newGoProfileCmd() *cobra.Command {
	var (
		format     string
		configPath string
		sourceRoot string
	)

	cmd := &cobra.Command{
		Use:   "goprofile [coverage.out]",
		Short: "Build a coverage report from a Go cover profile",
		Long: `Import a native Go -coverprofile file and render it through
the same tree and rollup pipeline as segment exports.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, sourceRoot, "", -1, -1, 0)
			if err != nil {
				return err
			}
			return runGoProfile(goProfileParams{
				profilePath: args[0],
				format:      format,
				cfg:         cfg,
				stdout:      os.Stdout,
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "text",
		"output format: text or json")
	cmd.Flags().StringVar(&configPath, "config", "",
		"path to .covtree.yaml")
	cmd.Flags().StringVarP(&sourceRoot, "source-root", "p", "",
		"path prefix to group files under")

	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for covtree report output",
		Long: `Print the JSON Schema (Draft 2020-12) that documents the
structure of covtree report --format=json output. Useful for
validating output or generating client types.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), report.Schema)
			return err
		},
	}
}

// loadConfig layers a YAML config file (optional) under CLI flag
// overrides. Threshold flags use -1 as the "not set" sentinel since
// 0 is out of range anyway.
func loadConfig(path, sourceRoot, pathFilter string, low, high float64, workers int) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if sourceRoot != "" {
		cfg.SourceRoot = sourceRoot
	}
	if pathFilter != "" {
		cfg.PathFilter = pathFilter
	}
	if low >= 0 {
		cfg.Thresholds.Low = low
	}
	if high >= 0 {
		cfg.Thresholds.High = high
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// countFiles counts file leaves for log output.
func countFiles(rpt *engine.Report) int {
	return rpt.Root.FileCount()
}
