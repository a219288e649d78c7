// Command dqclean runs the cleaning pipeline over a CSV or xlsx file and
// writes the cleaned data plus the quality report and audit trail.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dqcli/internal/config"
	"dqcli/internal/dataset"
	"dqcli/internal/engine"
	"dqcli/internal/exporter"
	"dqcli/internal/infrastructure"
	"dqcli/internal/ingest"
	"dqcli/internal/validation"
)

func main() {
	in := flag.String("in", "", "input file (.csv or .xlsx)")
	sheet := flag.String("sheet", "", "sheet name for xlsx input (defaults to the first sheet)")
	outDir := flag.String("out", "", "output directory (defaults to the configured data dir)")
	configPath := flag.String("config", "", "path to YAML config file")
	destructive := flag.Bool("destructive", false, "allow row deletion (overrides config)")
	workbook := flag.Bool("xlsx", false, "also write an xlsx workbook with data and quality sheets")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: dqclean -in data.csv [-config dqcli.yaml] [-out dir]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if _, err := infrastructure.InitializeLogger(cfg.Logging); err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogger()

	validator := validation.NewInputValidator(slog.Default())
	if err := validator.ValidateInputFile(*in); err != nil {
		slog.Error("input validation failed", "file", *in, "error", err)
		os.Exit(1)
	}

	dir := *outDir
	if dir == "" {
		dir = cfg.Paths.DataDir
	}
	if err := validator.ValidateOutputDirectory(dir); err != nil {
		slog.Error("output validation failed", "directory", dir, "error", err)
		os.Exit(1)
	}

	tbl, err := readInput(*in, *sheet)
	if err != nil {
		slog.Error("failed to read input", "file", *in, "error", err)
		os.Exit(1)
	}

	opts := cfg.PipelineOptions()
	if *destructive {
		opts.DestructiveRowDeletion = true
	}

	eng := engine.New(opts)
	result := eng.Run(context.Background(), tbl)

	base := strings.TrimSuffix(filepath.Base(*in), filepath.Ext(*in))

	cleanedPath := filepath.Join(dir, base+"_cleaned.csv")
	if err := exporter.WriteCSVFile(cleanedPath, result.Table, exporter.CSVOptions{BOMPrefix: true}); err != nil {
		slog.Error("failed to write cleaned data", "error", err)
		os.Exit(1)
	}
	if err := exporter.WriteReportJSON(filepath.Join(dir, base+"_report.json"), result.Report); err != nil {
		slog.Error("failed to write report", "error", err)
		os.Exit(1)
	}
	if err := exporter.WriteReportMarkdown(filepath.Join(dir, base+"_report.md"), result.Report); err != nil {
		slog.Error("failed to write report", "error", err)
		os.Exit(1)
	}
	if err := eng.Audit().SaveToFile(cfg.AuditFilePath(result.RunID)); err != nil {
		slog.Error("failed to write audit trail", "error", err)
		os.Exit(1)
	}
	if *workbook {
		if err := exporter.WriteWorkbook(filepath.Join(dir, base+"_cleaned.xlsx"), result.Table, result.Report); err != nil {
			slog.Error("failed to write workbook", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("run finished",
		"run_id", result.RunID,
		"status", result.Status,
		"quality_score", result.Report.QualityScore,
		"rows_in", result.Report.Statistics.Initial.Rows,
		"rows_out", result.Report.Statistics.Final.Rows,
		"output", cleanedPath)

	if result.Status != engine.StatusCompleted {
		os.Exit(1)
	}
}

func readInput(path, sheet string) (*dataset.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ingest.ReadExcelFile(path, sheet)
	case ".csv":
		return ingest.ReadCSVFile(path)
	default:
		return nil, fmt.Errorf("unsupported input format %q", filepath.Ext(path))
	}
}
