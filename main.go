package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/insightdelivered/transfer-extractor/internal/api"
	"github.com/insightdelivered/transfer-extractor/internal/config"
	"github.com/insightdelivered/transfer-extractor/internal/extractor"
	"github.com/insightdelivered/transfer-extractor/internal/models"
	"github.com/insightdelivered/transfer-extractor/internal/parser"
	"github.com/insightdelivered/transfer-extractor/internal/store"
	"github.com/insightdelivered/transfer-extractor/internal/writer"
)

const version = "1.0.0"

type options struct {
	format string
	order  models.Order
	layout models.Format
	output string
	header bool
}

func main() {
	// CLI flags
	formatFlag := flag.String("format", "tsv", "Output format: tsv, csv, xlsx, json")
	orderFlag := flag.String("order", "flat", "Record order: flat (input order) or grouped (by bank)")
	layoutFlag := flag.String("layout", "", "Force a layout: html, deposit, withdraw, single (detected if omitted)")
	outputFlag := flag.String("output", "", "Output file path (defaults to stdout; required for xlsx)")
	headerFlag := flag.Bool("header", true, "Include metadata header rows in CSV")
	configFlag := flag.String("config", "", "Config file (YAML, TOML or JSON)")
	serveFlag := flag.Bool("serve", false, "Start the HTTP API instead of processing files")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Transfer Record Extractor

Extracts bank transfer records (bank, account number, username,
account holder, amount) from pasted back-office exports.

Usage:
  transfer-extractor [flags] [input ...]

Inputs are text, HTML or PDF files. With no input, or "-", text is read
from stdin.

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Paste from the clipboard and print TSV
  pbpaste | transfer-extractor

  # Grouped CSV from a saved HTML export
  transfer-extractor --format=csv --order=grouped report.html

  # Excel workbook
  transfer-extractor --format=xlsx --output=transfers.xlsx withdrawals.txt

  # Run the API
  TRANSFER_STORE=redis transfer-extractor --serve

Layouts:
  html        table rows with data-changekey amount cells
  deposit     "Deposit" blocks followed by a "BANK <NAME>, account, holder" line
  withdraw    "Withdraw" blocks followed by a "To : BANK,account,holder" line
  single      one transfer per line, columns split by tabs or wide spacing
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("transfer-extractor v%s\n", version)
		os.Exit(0)
	}

	if *helpFlag {
		flag.Usage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fatalf("Configuration error: %v\n", err)
	}

	logger := newLogger(cfg.LogLevel)

	tables, err := cfg.Tables()
	if err != nil {
		fatalf("Configuration error: %v\n", err)
	}
	engine := parser.New(parser.WithTables(tables), parser.WithLogger(logger))

	if *serveFlag {
		if err := serve(cfg, engine, logger); err != nil {
			fatalf("Server error: %v\n", err)
		}
		return
	}

	order, ok := models.ParseOrder(*orderFlag)
	if !ok {
		fatalf("Unknown order %q. Supported: flat, grouped\n", *orderFlag)
	}

	var layout models.Format
	if *layoutFlag != "" {
		if layout, err = parser.ParseFormat(*layoutFlag); err != nil {
			fatalf("%v\n", err)
		}
	}

	opts := options{
		format: strings.ToLower(*formatFlag),
		order:  order,
		layout: layout,
		output: *outputFlag,
		header: *headerFlag,
	}
	if opts.format == "xlsx" && opts.output == "" {
		fatalf("--output is required for xlsx\n")
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	// All inputs are concatenated into one paste
	var texts []string
	for _, inputPath := range inputs {
		text, err := readInput(inputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			os.Exit(1)
		}
		texts = append(texts, text)
	}

	if err := process(engine, strings.Join(texts, "\n"), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "transfer",
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func readInput(inputPath string) (string, error) {
	if inputPath == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", errors.Wrap(err, "read stdin")
		}
		return string(data), nil
	}

	// Validate input file
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return "", errors.Errorf("input file not found: %s", inputPath)
	}

	if strings.ToLower(filepath.Ext(inputPath)) == ".pdf" {
		text, err := extractor.ExtractFile(inputPath)
		if err != nil {
			return "", errors.Wrap(err, "PDF extraction failed")
		}
		return text, nil
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", inputPath)
	}
	return string(data), nil
}

func process(engine *parser.Engine, text string, opts options) error {
	var res models.Result
	if opts.layout != "" {
		var err error
		if res, err = engine.ProcessAs(text, opts.layout); err != nil {
			return err
		}
	} else {
		res = engine.Process(text)
	}

	if err := emit(res, opts); err != nil {
		return err
	}

	// Print summary
	fmt.Fprintf(os.Stderr, "Format: %s\n", res.Format)
	fmt.Fprintf(os.Stderr, "Records: %d\n", res.Count())
	fmt.Fprintf(os.Stderr, "Total: %s\n", writer.FormatDisplay(res.TotalAmount))
	if badges := writer.Badges(res); len(badges) > 0 {
		fmt.Fprintf(os.Stderr, "Banks: %s\n", strings.Join(badges, " | "))
	}
	if res.Count() == 0 {
		fmt.Fprintln(os.Stderr, "Warning: No transfers found. The input may not match any known layout.")
		fmt.Fprintln(os.Stderr, "Try forcing one with --layout.")
	}
	if opts.output != "" {
		fmt.Fprintf(os.Stderr, "Output: %s\n", opts.output)
	}
	return nil
}

func emit(res models.Result, opts options) error {
	if opts.format == "json" {
		data, err := sonic.ConfigStd.MarshalIndent(res, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encode JSON")
		}
		data = append(data, '\n')
		if opts.output == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		return os.WriteFile(opts.output, data, 0o644)
	}

	w, err := writer.New(opts.format, opts.order, opts.header)
	if err != nil {
		return err
	}
	if opts.output != "" {
		return writer.WriteToFile(w, opts.output, res)
	}

	var buf bytes.Buffer
	if err := w.Write(&buf, res); err != nil {
		return err
	}
	if buf.Len() > 0 {
		buf.WriteByte('\n')
	}
	_, err = os.Stdout.Write(buf.Bytes())
	return err
}

func serve(cfg *config.Config, engine *parser.Engine, logger *log.Logger) error {
	ctx := context.Background()

	var st store.Store
	switch cfg.Store {
	case config.StoreRedis:
		r, err := store.NewRedis(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.ResultTTL)
		if err != nil {
			return err
		}
		st = r
	default:
		st = store.NewMemory(cfg.ResultTTL)
	}
	defer st.Close()

	api.Version = version
	app := api.NewApp(api.NewHandler(engine, st, logger), cfg.MaxUploadMB)

	logger.Info("server running", "addr", cfg.Addr, "store", cfg.Store)
	return app.Listen(cfg.Addr)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
