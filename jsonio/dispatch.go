package jsonio

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"strings"

	"github.com/reoring/ejson"
)

// ErrUnsupportedFormat is returned for extensions and kinds no reader
// handles.
var ErrUnsupportedFormat = errors.New("jsonio: unsupported format")

// BatchReader is the common shape of the batch iterators.
type BatchReader func(ctx context.Context, path string, size int, opt ReadOpt) iter.Seq2[ejson.Records, error]

func csvReader(ctx context.Context, path string, size int, _ ReadOpt) iter.Seq2[ejson.Records, error] {
	return CSVBatches(ctx, path, size)
}

func excelReader(ctx context.Context, path string, size int, _ ReadOpt) iter.Seq2[ejson.Records, error] {
	return ExcelBatches(ctx, path, size)
}

var byKind = map[string]BatchReader{
	"ndjson": NDJSONBatches,
	"csv":    csvReader,
	"excel":  excelReader,
	"yaml":   YAMLBatches,
	"json":   JSONBatches,
}

var byExtension = map[string]string{
	"ndjson": "ndjson",
	"nl":     "ndjson",
	"jsonl":  "ndjson",
	"csv":    "csv",
	"xlsx":   "excel",
	"xlsm":   "excel",
	"yaml":   "yaml",
	"yml":    "yaml",
	"json":   "json",
}

// ReaderForExtension returns the reader for a file extension, with or
// without the leading dot.
func ReaderForExtension(ext string) (BatchReader, error) {
	e := strings.ToLower(strings.TrimPrefix(ext, "."))
	kind, ok := byExtension[e]
	if !ok {
		return nil, fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
	}
	return byKind[kind], nil
}

// ReaderForFileType returns the reader for "ndjson", "csv", "excel",
// "yaml" or "json".
func ReaderForFileType(kind string) (BatchReader, error) {
	r, ok := byKind[strings.ToLower(kind)]
	if !ok {
		return nil, fmt.Errorf("%w: file type %q", ErrUnsupportedFormat, kind)
	}
	return r, nil
}

// BatchesFromFile picks the reader by the extension of path.
func BatchesFromFile(ctx context.Context, path string, size int, opt ReadOpt) (iter.Seq2[ejson.Records, error], error) {
	r, err := ReaderForExtension(filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	return r(ctx, path, size, opt), nil
}

// ReadAll drains batches into one list, stopping at the first error.
func ReadAll(batches iter.Seq2[ejson.Records, error]) (ejson.Records, error) {
	out := ejson.Records{}
	for batch, err := range batches {
		if err != nil {
			return out, err
		}
		out = append(out, batch...)
	}
	return out, nil
}
