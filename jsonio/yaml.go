package jsonio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reoring/ejson"
	"github.com/reoring/ejson/codec"
)

// YAMLBatches yields the records of a multi-document YAML file. Each
// document is a mapping (one record) or a sequence of mappings; empty
// documents are skipped. Values are converted to their JSON forms: integers
// become float64, timestamps RFC 3339 strings, and non-string keys their
// fmt rendering.
func YAMLBatches(ctx context.Context, path string, size int, opt ReadOpt) iter.Seq2[ejson.Records, error] {
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

		l := logger(opt.Logger)
		dec := yaml.NewDecoder(f)
		for doc := 0; ; doc++ {
			var v any
			err := dec.Decode(&v)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				b.fail(fmt.Errorf("jsonio: %s document %d: %w", path, doc, err))
				return
			}
			list, err := yamlRecords(fromYAML(v))
			if err != nil {
				if err := opt.OnError.skip(l, err, fmt.Sprintf("skip document %d of %s", doc, path)); err != nil {
					b.fail(err)
					return
				}
				continue
			}
			for _, r := range list {
				if !b.add(r) {
					return
				}
			}
		}
		b.flush()
	}
}

func yamlRecords(v any) (ejson.Records, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return ejson.Records{x}, nil
	case []any:
		return ejson.AsRecords(x)
	}
	return nil, ejson.NewIssue(ejson.CodeInvalidType, "/", fmt.Sprintf("expected mapping or sequence, got %T", v))
}

func fromYAML(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = fromYAML(e)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = fromYAML(e)
		}
		return out
	case []any:
		for i, e := range x {
			x[i] = fromYAML(e)
		}
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case time.Time:
		return codec.FormatTime(x)
	}
	return v
}
