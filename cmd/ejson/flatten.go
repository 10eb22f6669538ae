package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/reoring/ejson"
	"github.com/reoring/ejson/flatten"
	"github.com/reoring/ejson/jsonio"
)

// flattenFlags overrides the flatten section of the config.
type flattenFlags struct {
	root, objectSep, arraySub string
	keepArrays, noIndex       bool
	ndjson                    bool
}

func (ff *flattenFlags) register(f *pflag.FlagSet) {
	f.StringVar(&ff.root, "root", "", "prefix for every key")
	f.StringVar(&ff.objectSep, "object-separator", ".", "separator between object keys")
	f.StringVar(&ff.arraySub, "array-subscript", "[%d]", "array index template (with %d) or separator")
	f.BoolVar(&ff.keepArrays, "keep-arrays", false, "leave arrays as values")
	f.BoolVar(&ff.noIndex, "no-index", false, "drop array indices from keys")
	f.BoolVar(&ff.ndjson, "ndjson", false, "process ND-JSON input line by line")
}

func (a *app) flattener(cmd *cobra.Command, ff *flattenFlags) (*flatten.Flattener, error) {
	opt := a.cfg.FlattenOptions()
	f := cmd.Flags()
	if f.Changed("root") {
		opt.RootIdentifier = ff.root
	}
	if f.Changed("object-separator") {
		opt.ObjectSeparator = ff.objectSep
	}
	if f.Changed("array-subscript") {
		opt.ArraySubscript = ff.arraySub
	}
	if f.Changed("keep-arrays") {
		opt.KeepArrays = ff.keepArrays
	}
	if f.Changed("no-index") {
		opt.NoIndex = ff.noIndex
	}
	return flatten.New(opt)
}

func (a *app) flattenCmd() *cobra.Command {
	ff := &flattenFlags{}
	cmd := &cobra.Command{
		Use:   "flatten [file|-]",
		Short: "Flatten nested JSON into single-level keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fl, err := a.flattener(cmd, ff)
			if err != nil {
				return err
			}
			return a.transform(cmd, args, ff.ndjson, func(v any) (any, error) {
				return fl.Flatten(v), nil
			})
		},
	}
	ff.register(cmd.Flags())
	return cmd
}

func (a *app) unflattenCmd() *cobra.Command {
	ff := &flattenFlags{}
	cmd := &cobra.Command{
		Use:   "unflatten [file|-]",
		Short: "Rebuild nested JSON from flattened keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fl, err := a.flattener(cmd, ff)
			if err != nil {
				return err
			}
			return a.transform(cmd, args, ff.ndjson, func(v any) (any, error) {
				m, ok := v.(map[string]any)
				if !ok {
					return nil, ejson.NewIssue(ejson.CodeInvalidType, "/", "expected a flattened object")
				}
				return fl.Unflatten(m)
			})
		},
	}
	ff.register(cmd.Flags())
	return cmd
}

// transform applies fn to the whole input document, or to every line when
// ndjson is set.
func (a *app) transform(cmd *cobra.Command, args []string, ndjson bool, fn func(any) (any, error)) error {
	load := ejson.LoadOpt{NumberMode: ejson.NumberJSONNumber}
	if !ndjson {
		data, err := a.readInput(args)
		if err != nil {
			return err
		}
		v, err := ejson.Loads(data, load)
		if err != nil {
			return err
		}
		out, err := fn(v)
		if err != nil {
			return err
		}
		return a.writeValue(a.out, out, a.cfg.DumpOpt())
	}

	rc, err := a.open(args)
	if err != nil {
		return err
	}
	defer rc.Close()
	for batch, err := range jsonio.NDJSONStream(cmd.Context(), rc, a.cfg.BatchSize, a.readOpt(load)) {
		if err != nil {
			return err
		}
		for _, r := range batch {
			out, err := fn(r)
			if err != nil {
				return err
			}
			if err := a.writeValue(a.out, out, ejson.DumpOpt{ASCII: a.cfg.Dump.ASCII, EscapeHTML: a.cfg.Dump.EscapeHTML}); err != nil {
				return err
			}
		}
	}
	return nil
}
