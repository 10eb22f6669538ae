package main

import (
	"github.com/spf13/cobra"

	"github.com/reoring/ejson"
	"github.com/reoring/ejson/jsonio"
	"github.com/reoring/ejson/records"
)

func (a *app) mapbyCmd() *cobra.Command {
	var (
		field string
		opt   records.MapOpt
	)
	cmd := &cobra.Command{
		Use:   "mapby --field F [file|-]",
		Short: "Index records by the value of a field",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.readRecords(cmd, args, ejson.LoadOpt{NumberMode: ejson.NumberJSONNumber})
			if err != nil {
				return err
			}
			out, err := records.MapByField(field, list, opt)
			if err != nil {
				return err
			}
			return a.writeValue(a.out, out, a.cfg.DumpOpt())
		},
	}
	f := cmd.Flags()
	f.StringVar(&field, "field", "", "field whose value keys the result")
	f.BoolVar(&opt.IgnoreMissing, "ignore-missing", false, "skip records without the field")
	f.BoolVar(&opt.RemoveField, "remove-field", false, "drop the field from indexed records")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func (a *app) dedupeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dedupe [file|-]",
		Short: "Drop repeated ND-JSON records, keeping first occurrences",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.readRecords(cmd, args, ejson.LoadOpt{NumberMode: ejson.NumberJSONNumber})
			if err != nil {
				return err
			}
			unique, err := records.Dedupe(list)
			if err != nil {
				return err
			}
			if n := len(list) - len(unique); n > 0 {
				a.log.Info().Int("dropped", n).Msg("dedupe")
			}
			return jsonio.WriteNDJSON(a.out, unique, jsonio.WriteOpt{Dump: ejson.DumpOpt{ASCII: a.cfg.Dump.ASCII}})
		},
	}
}
