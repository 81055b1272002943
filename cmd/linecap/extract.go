package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/linecap/internal/core"
	"github.com/JonMunkholm/linecap/internal/logging"
	"github.com/JonMunkholm/linecap/internal/sink"
	"github.com/JonMunkholm/linecap/internal/source"
)

type extractOptions struct {
	layout       string
	layoutFile   string
	pages        string
	area         string
	encoding     string
	out          string
	xlsx         string
	indent       string
	allowPartial bool
	timeout      time.Duration
	logLevel     string
	logFormat    string
}

func newExtractCommand() *cobra.Command {
	var opts extractOptions
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract records from a PDF, XLSX or CSV file",
		Long: "Extract reads the tables of one document, keeps the rows the layout\n" +
			"accepts as data rows and writes one record per key as JSON.\n" +
			"A later row with the same key replaces the earlier record.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.layout, "layout", envOr("EXTRACT_LAYOUT", "tepco-trunk"), "Registered layout key")
	f.StringVar(&opts.layoutFile, "layout-file", "", "YAML layout file (overrides --layout)")
	f.StringVar(&opts.pages, "pages", "", `Pages or sheets to read, e.g. "7-9" or "all" (default: the layout's pages)`)
	f.StringVar(&opts.area, "area", "", `PDF table area "left,top,right,bottom" in points (default: the layout's area)`)
	f.StringVar(&opts.encoding, "encoding", "", "CSV character set, e.g. shift_jis (default: UTF-8)")
	f.StringVarP(&opts.out, "out", "o", "-", `JSON output file, "-" for stdout`)
	f.StringVar(&opts.xlsx, "xlsx", "", "Also write the records to this workbook")
	f.StringVar(&opts.indent, "indent", sink.DefaultIndent, "JSON indent; empty for compact output")
	f.BoolVar(&opts.allowPartial, "allow-partial", false, "Write the records read before a source failure")
	f.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Abort the extraction after this long")
	f.StringVar(&opts.logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "Log level: debug, info, warn, error")
	f.StringVar(&opts.logFormat, "log-format", envOr("LOG_FORMAT", "text"), "Log format: text or json")
	return cmd
}

func runExtract(cmd *cobra.Command, path string, opts extractOptions) error {
	// Logs go to stderr so stdout carries only JSON.
	slog.SetDefault(logging.New(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat))

	layout, err := resolveLayout(opts.layout, opts.layoutFile)
	if err != nil {
		return err
	}

	srcOpts := source.OptionsFor(layout)
	if err := srcOpts.Override(opts.pages, opts.area, opts.encoding); err != nil {
		return fmt.Errorf("bad request: %w", err)
	}
	src, err := source.Open(path, srcOpts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	res, runErr := core.NewService().Run(ctx, src, layout)
	if runErr != nil {
		if res == nil || !res.Partial || !opts.allowPartial {
			return runErr
		}
		slog.Warn("writing partial result", "error", runErr, "records", res.Store.Len())
	}

	if err := writeOutputs(ctx, cmd, res, opts); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%d records from %d regions (%d rows, %d replaced)\n",
		res.Store.Len(), res.Stats.Regions, res.Stats.Rows, res.Stats.Replaced)
	return nil
}

// resolveLayout loads file when set, otherwise looks key up in the registry.
func resolveLayout(key, file string) (core.Layout, error) {
	if file != "" {
		return core.LoadLayoutFile(file)
	}
	return core.LookupLayout(key)
}

func writeOutputs(ctx context.Context, cmd *cobra.Command, res *core.Result, opts extractOptions) error {
	var sinks []sink.Sink
	if opts.out != "" && opts.out != "-" {
		sinks = append(sinks, &sink.JSONFile{Path: opts.out, Indent: opts.indent})
	}
	if opts.xlsx != "" {
		sinks = append(sinks, &sink.XLSXFile{Path: opts.xlsx})
	}
	if len(sinks) > 0 {
		if err := (&sink.Multi{Sinks: sinks}).Write(ctx, res); err != nil {
			return err
		}
	}

	if opts.out == "-" {
		return sink.EncodeJSON(cmd.OutOrStdout(), res.Store, opts.indent)
	}
	return nil
}
