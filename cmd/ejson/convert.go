package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/ejson"
	"github.com/reoring/ejson/jsonio"
)

// maxParallelReads bounds the inputs convert reads at once.
const maxParallelReads = 4

func (a *app) convertCmd() *cobra.Command {
	var outPath, sheet string
	cmd := &cobra.Command{
		Use:   "convert -o OUT INPUT...",
		Short: "Merge ND-JSON, CSV, Excel, YAML or JSON inputs into one output",
		Long: "Reads every input with the reader matching its extension and writes the records,\n" +
			"in argument order, as ND-JSON (.ndjson, .jsonl, .nl), JSON (.json) or Excel (.xlsx).",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			write, err := a.writerFor(outPath, sheet)
			if err != nil {
				return err
			}
			parts := make([]ejson.Records, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(maxParallelReads)
			for i, in := range args {
				g.Go(func() error {
					batches, err := jsonio.BatchesFromFile(ctx, in, a.cfg.BatchSize, a.readOpt(ejson.LoadOpt{}))
					if err != nil {
						return err
					}
					list, err := jsonio.ReadAll(batches)
					if err != nil {
						return fmt.Errorf("%s: %w", in, err)
					}
					a.log.Debug().Str("input", in).Int("records", len(list)).Msg("read")
					parts[i] = list
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			var all ejson.Records
			for _, p := range parts {
				all = append(all, p...)
			}
			if all == nil {
				all = ejson.Records{}
			}
			return write(all)
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file; its extension picks the format")
	cmd.Flags().StringVar(&sheet, "sheet", "", "worksheet name for .xlsx output")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) writerFor(path, sheet string) (func(ejson.Records) error, error) {
	opt := jsonio.WriteOpt{Dump: a.cfg.DumpOpt(), Logger: &a.log}
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "ndjson", "jsonl", "nl":
		opt.Dump.Pretty = false
		return func(rs ejson.Records) error { return jsonio.WriteNDJSONFile(path, rs, opt) }, nil
	case "json":
		return func(rs ejson.Records) error { return jsonio.WriteJSONFile(path, rs, opt) }, nil
	case "xlsx":
		return func(rs ejson.Records) error {
			return jsonio.WriteExcelFile(path, rs, jsonio.ExcelOpt{Sheet: sheet})
		}, nil
	}
	return nil, fmt.Errorf("%w: output %q", jsonio.ErrUnsupportedFormat, path)
}
