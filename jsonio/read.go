package jsonio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/reoring/ejson"
)

// ReadOpt configures the readers.
type ReadOpt struct {
	Load    ejson.LoadOpt
	OnError OnError
	Logger  *zerolog.Logger
}

// ReadJSONFile decodes the JSON document in path. Under OnErrorLog and
// OnErrorIgnore a decode failure yields (nil, nil); failing to open the
// file is always returned.
func ReadJSONFile(path string, opt ReadOpt) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := ejson.Loads(data, opt.Load)
	if err != nil {
		return nil, opt.OnError.fail(logger(opt.Logger), err, "cannot load JSON from "+path)
	}
	return v, nil
}

// ReadNDJSONFile decodes one record per line of path, skipping blank
// lines. The first bad line ends reading; under OnErrorLog and
// OnErrorIgnore the records read so far are returned without error.
func ReadNDJSONFile(path string, opt ReadOpt) (ejson.Records, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := ejson.Records{}
	err = eachLine(f, func(n int, line []byte) error {
		r, err := ejson.LoadsRecord(line, opt.Load)
		if err != nil {
			if err := opt.OnError.fail(logger(opt.Logger), err, fmt.Sprintf("cannot load JSON at line %d of %s", n, path)); err != nil {
				return err
			}
			return errStop
		}
		out = append(out, r)
		return nil
	})
	if errors.Is(err, errStop) {
		err = nil
	}
	return out, err
}

// errStop ends eachLine without an error.
var errStop = errors.New("stop")

// eachLine calls fn for every non-blank line with its 1-based number,
// stopping at the first error fn returns.
func eachLine(r io.Reader, fn func(n int, line []byte) error) error {
	br := bufio.NewReader(r)
	for n := 1; ; n++ {
		line, err := br.ReadBytes('\n')
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			if ferr := fn(n, trimmed); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// NDJSONBatches yields the records of an ND-JSON file. Blank lines are
// skipped; bad lines are skipped under OnErrorLog and OnErrorIgnore and end
// iteration with an error under OnErrorRaise.
func NDJSONBatches(ctx context.Context, path string, size int, opt ReadOpt) iter.Seq2[ejson.Records, error] {
	return func(yield func(ejson.Records, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(nil, err)
			return
		}
		defer f.Close()
		NDJSONStream(ctx, f, size, opt)(yield)
	}
}

// NDJSONStream is NDJSONBatches over an open reader such as stdin.
func NDJSONStream(ctx context.Context, r io.Reader, size int, opt ReadOpt) iter.Seq2[ejson.Records, error] {
	return func(yield func(ejson.Records, error) bool) {
		b, err := newBatcher(ctx, size, yield)
		if err != nil {
			yield(nil, err)
			return
		}
		l := logger(opt.Logger)
		err = eachLine(r, func(n int, line []byte) error {
			rec, err := ejson.LoadsRecord(line, opt.Load)
			if err != nil {
				return opt.OnError.skip(l, err, fmt.Sprintf("skip ND-JSON line %d", n))
			}
			if !b.add(rec) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			b.fail(err)
			return
		}
		b.flush()
	}
}

// CSVBatches yields the rows of a CSV file as records keyed by the header
// row. Empty cells become nil; missing trailing cells are nil too and
// cells beyond the header are dropped.
func CSVBatches(ctx context.Context, path string, size int) iter.Seq2[ejson.Records, error] {
	return func(yield func(ejson.Records, error) bool) {
		b, err := newBatcher(ctx, size, yield)
		if err != nil {
			yield(nil, err)
			return
		}
		f, err := os.Open(path)
		if err != nil {
			yield(nil, err)
			return
		}
		defer f.Close()

		cr := csv.NewReader(f)
		cr.FieldsPerRecord = -1
		header, err := cr.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			yield(nil, fmt.Errorf("jsonio: %s header: %w", path, err))
			return
		}
		for {
			row, err := cr.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				b.fail(fmt.Errorf("jsonio: %s: %w", path, err))
				return
			}
			r := make(ejson.Record, len(header))
			for i, name := range header {
				if i < len(row) && row[i] != "" {
					r[name] = row[i]
				} else {
					r[name] = nil
				}
			}
			if !b.add(r) {
				return
			}
		}
		b.flush()
	}
}

// ArrayBatches streams the elements of a top-level JSON array, which must
// all be objects.
func ArrayBatches(ctx context.Context, path string, size int, opt ReadOpt) iter.Seq2[ejson.Records, error] {
	return func(yield func(ejson.Records, error) bool) {
		b, err := newBatcher(ctx, size, yield)
		if err != nil {
			yield(nil, err)
			return
		}
		f, err := os.Open(path)
		if err != nil {
			yield(nil, err)
			return
		}
		defer f.Close()

		streamArray(b, bufio.NewReader(f), path, opt)
	}
}

func streamArray(b *batcher, r io.Reader, path string, opt ReadOpt) {
	l := logger(opt.Logger)
	d := ejson.NewArrayDecoder(r, opt.Load)
	for {
		i := d.Index()
		v, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			b.fail(fmt.Errorf("jsonio: %s: %w", path, err))
			return
		}
		rec, ok := v.(map[string]any)
		if !ok {
			err := ejson.NewIssue(ejson.CodeInvalidType, "/"+strconv.Itoa(i), fmt.Sprintf("expected object, got %T", v))
			if err := opt.OnError.skip(l, err, "skip element of "+path); err != nil {
				b.fail(err)
				return
			}
			continue
		}
		if !b.add(rec) {
			return
		}
	}
	b.flush()
}

// JSONBatches reads a .json file holding either an array of records, which
// is streamed, or a single record.
func JSONBatches(ctx context.Context, path string, size int, opt ReadOpt) iter.Seq2[ejson.Records, error] {
	return func(yield func(ejson.Records, error) bool) {
		b, err := newBatcher(ctx, size, yield)
		if err != nil {
			yield(nil, err)
			return
		}
		f, err := os.Open(path)
		if err != nil {
			yield(nil, err)
			return
		}
		defer f.Close()

		br := bufio.NewReader(f)
		first, err := firstByte(br)
		if err == io.EOF {
			return
		}
		if err != nil {
			yield(nil, err)
			return
		}
		if first == '[' {
			streamArray(b, br, path, opt)
			return
		}
		data, err := io.ReadAll(br)
		if err != nil {
			yield(nil, err)
			return
		}
		r, err := ejson.LoadsRecord(data, opt.Load)
		if err != nil {
			if err := opt.OnError.skip(logger(opt.Logger), err, "skip "+path); err != nil {
				b.fail(err)
			}
			return
		}
		if b.add(r) {
			b.flush()
		}
	}
}

// firstByte peeks at the first non-space byte without consuming it.
func firstByte(br *bufio.Reader) (byte, error) {
	for {
		c, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return c, br.UnreadByte()
	}
}
