package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reoring/ejson"
	"github.com/reoring/ejson/internal/config"
	elog "github.com/reoring/ejson/internal/log"
	"github.com/reoring/ejson/jsonio"
	"github.com/reoring/ejson/repair"
	"github.com/reoring/ejson/source/gojson"
	"github.com/reoring/ejson/source/jsoniter"
	"github.com/reoring/ejson/source/jsonv2"
)

// app carries what every subcommand shares: streams, the merged
// configuration and the logger.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configPath string
	logLevel   string
	driver     string
	batchSize  int
	onError    string

	cfg config.Config
	log zerolog.Logger
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{in: in, out: out, errOut: errOut, cfg: config.Default(), log: zerolog.Nop()}
	root := &cobra.Command{
		Use:               "ejson",
		Short:             "Format, repair, flatten and convert JSON data",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file (default $"+config.EnvPath+")")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.driver, "driver", "", "JSON driver: encoding/json, go-json, jsoniter, json/v2")
	pf.IntVar(&a.batchSize, "batch-size", 0, "records per batch when streaming inputs")
	pf.StringVar(&a.onError, "on-error", "", "bad record policy: raise, log, ignore")

	root.AddCommand(
		a.fmtCmd(),
		a.flattenCmd(),
		a.unflattenCmd(),
		a.repairCmd(),
		a.convertCmd(),
		a.mapbyCmd(),
		a.dedupeCmd(),
	)
	return root
}

// setup loads the config file and lays the global flags over it.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("driver") {
		cfg.Driver = a.driver
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize = a.batchSize
	}
	if flags.Changed("on-error") {
		cfg.OnError = a.onError
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	elog.Configure(elog.Config{Level: cfg.LogLevel, Output: a.errOut, Console: true})
	a.log = elog.WithComponent("cli")

	d, err := driverByName(cfg.Driver)
	if err != nil {
		return err
	}
	ejson.SetJSONDriver(d)
	a.log.Debug().Str("driver", d.Name()).Int("batch_size", cfg.BatchSize).Msg("configured")
	return nil
}

func driverByName(name string) (ejson.JSONDriver, error) {
	switch name {
	case "encoding/json", "stdlib":
		return ejson.StdlibDriver(), nil
	case "", "go-json", "gojson":
		return gojson.Driver(), nil
	case "jsoniter":
		return jsoniter.Driver(), nil
	case "json/v2", "jsonv2":
		// falls back to encoding/json unless built with -tags jsonv2
		return jsonv2.Driver(), nil
	}
	return nil, fmt.Errorf("unknown driver %q", name)
}

func (a *app) readOpt(load ejson.LoadOpt) jsonio.ReadOpt {
	return jsonio.ReadOpt{Load: load, OnError: a.cfg.OnErrorPolicy(), Logger: &a.log}
}

func (a *app) repairHandler() ejson.ErrorHandler {
	opt := a.cfg.RepairOptions()
	opt.Logger = &a.log
	return repair.Handler(opt)
}

// open returns stdin for no argument or "-", otherwise the named file.
func (a *app) open(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(a.in), nil
	}
	return os.Open(args[0])
}

func (a *app) readInput(args []string) ([]byte, error) {
	rc, err := a.open(args)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// readRecords accepts a JSON array of records, a single record or
// ND-JSON.
func (a *app) readRecords(cmd *cobra.Command, args []string, load ejson.LoadOpt) (ejson.Records, error) {
	rc, err := a.open(args)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	br := bufio.NewReader(rc)
	first, err := skipSpace(br)
	if err == io.EOF {
		return ejson.Records{}, nil
	}
	if err != nil {
		return nil, err
	}
	if first == '[' {
		data, err := io.ReadAll(br)
		if err != nil {
			return nil, err
		}
		return ejson.LoadsRecords(data, load)
	}
	return jsonio.ReadAll(jsonio.NDJSONStream(cmd.Context(), br, a.cfg.BatchSize, a.readOpt(load)))
}

// skipSpace consumes leading whitespace and peeks at the next byte.
func skipSpace(br *bufio.Reader) (byte, error) {
	for {
		c, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
			return c, br.UnreadByte()
		}
	}
}

// output returns the file named by path, or the command's stdout.
func (a *app) output(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{a.out}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (a *app) writeValue(w io.Writer, v any, dump ejson.DumpOpt) error {
	dump.AppendNewline = true
	b, err := ejson.Marshal(v, dump)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
