package main

import (
	"github.com/spf13/cobra"

	"github.com/reoring/ejson"
)

func (a *app) fmtCmd() *cobra.Command {
	var (
		pretty, ascii, fix bool
		outPath            string
	)
	cmd := &cobra.Command{
		Use:   "fmt [file|-]",
		Short: "Re-encode a JSON document with sorted keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readInput(args)
			if err != nil {
				return err
			}
			load := ejson.LoadOpt{NumberMode: ejson.NumberJSONNumber}
			if fix {
				load.ErrorHandler = a.repairHandler()
			}
			v, err := ejson.Loads(data, load)
			if err != nil {
				return err
			}
			dump := a.cfg.DumpOpt()
			if cmd.Flags().Changed("pretty") {
				dump.Pretty = pretty
			}
			if cmd.Flags().Changed("ascii") {
				dump.ASCII = ascii
			}
			w, err := a.output(outPath)
			if err != nil {
				return err
			}
			if err := a.writeValue(w, v, dump); err != nil {
				w.Close()
				return err
			}
			return w.Close()
		},
	}
	f := cmd.Flags()
	f.BoolVar(&pretty, "pretty", false, "indent with two spaces")
	f.BoolVar(&ascii, "ascii", false, "escape non-ASCII characters")
	f.BoolVar(&fix, "repair", false, "repair malformed input before formatting")
	f.StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (a *app) repairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair [file|-]",
		Short: "Fix common JSON mistakes and print compact JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readInput(args)
			if err != nil {
				return err
			}
			v, err := ejson.Loads(data, ejson.LoadOpt{NumberMode: ejson.NumberJSONNumber, ErrorHandler: a.repairHandler()})
			if err != nil {
				return err
			}
			return a.writeValue(a.out, v, ejson.DumpOpt{EscapeHTML: a.cfg.Dump.EscapeHTML, ASCII: a.cfg.Dump.ASCII})
		},
	}
}
