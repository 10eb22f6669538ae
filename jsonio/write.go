package jsonio

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	"github.com/reoring/ejson"
)

// WriteOpt configures the writers.
type WriteOpt struct {
	// Pretty indents each document with two spaces. ND-JSON documents then
	// span several lines, which most ND-JSON readers reject.
	Pretty bool
	// Append adds to an existing ND-JSON file instead of truncating it.
	Append  bool
	OnError OnError
	// Dump is the base encoding configuration; Pretty overrides its field
	// of the same name.
	Dump   ejson.DumpOpt
	Logger *zerolog.Logger
}

func (o WriteOpt) dump() ejson.DumpOpt {
	d := o.Dump
	if o.Pretty {
		d.Pretty = true
	}
	d.AppendNewline = false
	return d
}

// WriteNDJSON writes one document per line. Writing stops at the first
// record that fails to encode.
func WriteNDJSON(w io.Writer, list ejson.Records, opt WriteOpt) error {
	values := make([]any, len(list))
	for i, r := range list {
		values[i] = r
	}
	return writeLines(w, values, opt)
}

func writeLines(w io.Writer, values []any, opt WriteOpt) error {
	bw := bufio.NewWriter(w)
	d := opt.dump()
	for i, v := range values {
		b, err := ejson.Marshal(v, d)
		if err != nil {
			return opt.OnError.fail(logger(opt.Logger), err, fmt.Sprintf("encode ND-JSON line %d", i))
		}
		bw.Write(b)
		if err := bw.WriteByte('\n'); err != nil {
			return opt.OnError.fail(logger(opt.Logger), err, "write ND-JSON")
		}
	}
	if err := bw.Flush(); err != nil {
		return opt.OnError.fail(logger(opt.Logger), err, "write ND-JSON")
	}
	return nil
}

// WriteNDJSONFile writes list to path, truncating it unless opt.Append is
// set.
func WriteNDJSONFile(path string, list ejson.Records, opt WriteOpt) error {
	values := make([]any, len(list))
	for i, r := range list {
		values[i] = r
	}
	return writeLinesFile(path, values, opt)
}

func writeLinesFile(path string, values []any, opt WriteOpt) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if opt.Append {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return opt.OnError.fail(logger(opt.Logger), err, "open "+path)
	}
	werr := writeLines(f, values, opt)
	if cerr := f.Close(); cerr != nil && werr == nil {
		return opt.OnError.fail(logger(opt.Logger), cerr, "close "+path)
	}
	return werr
}

// WriteJSONFile encodes v into path. The file is replaced atomically, so
// readers see either the old or the new content.
func WriteJSONFile(path string, v any, opt WriteOpt) error {
	b, err := ejson.Marshal(v, opt.dump())
	if err != nil {
		return opt.OnError.fail(logger(opt.Logger), err, "encode JSON for "+path)
	}
	if err := writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(b)
		return err
	}); err != nil {
		return opt.OnError.fail(logger(opt.Logger), err, "write "+path)
	}
	return nil
}

// WriteJSONOrNDJSONFile writes lists (ejson.Records or []any) as ND-JSON
// and anything else as a single JSON document.
func WriteJSONOrNDJSONFile(path string, v any, opt WriteOpt) error {
	switch x := v.(type) {
	case ejson.Records:
		return WriteNDJSONFile(path, x, opt)
	case []any:
		return writeLinesFile(path, x, opt)
	}
	return WriteJSONFile(path, v, opt)
}

func writeAtomic(path string, write func(io.Writer) error) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer pending.Cleanup()
	if err := write(pending); err != nil {
		return err
	}
	return pending.CloseAtomicallyReplace()
}
