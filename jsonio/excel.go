package jsonio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/reoring/ejson"
)

const defaultSheet = "Sheet1"

// ExcelOpt configures WriteExcelFile.
type ExcelOpt struct {
	// Sheet names the worksheet; "Sheet1" when empty.
	Sheet string
	// Columns fixes the header row. When empty the sorted union of all
	// record keys is used.
	Columns []string
}

// WriteExcelFile writes list as a spreadsheet: a header row of field names
// followed by one row per record. Objects and arrays are stored as their
// JSON encoding, which ExcelBatches decodes back.
func WriteExcelFile(path string, list ejson.Records, opt ExcelOpt) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := defaultSheet
	if opt.Sheet != "" && opt.Sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, opt.Sheet); err != nil {
			return fmt.Errorf("jsonio: name sheet: %w", err)
		}
		sheet = opt.Sheet
	}
	cols := opt.Columns
	if len(cols) == 0 {
		cols = unionKeys(list)
	}

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("jsonio: write header: %w", err)
	}
	for i, r := range list {
		row := make([]any, len(cols))
		for j, c := range cols {
			v, err := excelValue(r[c])
			if err != nil {
				return fmt.Errorf("jsonio: record %d field %q: %w", i, c, err)
			}
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("jsonio: write row %d: %w", i, err)
		}
	}
	return writeAtomic(path, func(w io.Writer) error { return f.Write(w) })
}

func unionKeys(list ejson.Records) []string {
	seen := map[string]struct{}{}
	var keys []string
	for _, r := range list {
		for k := range r {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	slices.Sort(keys)
	return keys
}

func excelValue(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, float64, int, int64:
		return v, nil
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f, nil
		}
		return x.String(), nil
	}
	b, err := ejson.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ExcelBatches reads the first worksheet of an .xlsx file. The first row
// names the fields; columns with an empty header are dropped and rows with
// no values are skipped. Cell values are parsed with ParseCell, and numeric
// cells become float64.
func ExcelBatches(ctx context.Context, path string, size int) iter.Seq2[ejson.Records, error] {
	return func(yield func(ejson.Records, error) bool) {
		f, err := excelize.OpenFile(path)
		if err != nil {
			yield(nil, fmt.Errorf("jsonio: open %s: %w", path, err))
			return
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return
		}
		sheet := sheets[0]
		rows, err := f.Rows(sheet)
		if err != nil {
			yield(nil, fmt.Errorf("jsonio: read %s: %w", path, err))
			return
		}
		defer rows.Close()

		b, err := newBatcher(ctx, size, yield)
		if err != nil {
			yield(nil, err)
			return
		}
		var header []string
		for n := 1; rows.Next(); n++ {
			cells, err := rows.Columns(excelize.Options{RawCellValue: true})
			if err != nil {
				yield(nil, fmt.Errorf("jsonio: %s row %d: %w", path, n, err))
				return
			}
			if header == nil {
				header = cells
				if header == nil {
					header = []string{}
				}
				continue
			}
			r, err := excelRecord(f, sheet, n, header, cells)
			if err != nil {
				yield(nil, fmt.Errorf("jsonio: %s row %d: %w", path, n, err))
				return
			}
			if r == nil {
				continue
			}
			if !b.add(r) {
				return
			}
		}
		if err := rows.Error(); err != nil {
			yield(nil, fmt.Errorf("jsonio: read %s: %w", path, err))
			return
		}
		b.flush()
	}
}

// excelRecord returns nil for a row without values.
func excelRecord(f *excelize.File, sheet string, row int, header, cells []string) (ejson.Record, error) {
	if !slices.ContainsFunc(cells, func(c string) bool { return c != "" }) {
		return nil, nil
	}
	r := ejson.Record{}
	for i, name := range header {
		if name == "" {
			continue
		}
		if i >= len(cells) || cells[i] == "" {
			r[name] = nil
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return nil, err
		}
		typ, err := f.GetCellType(sheet, cell)
		if err != nil {
			return nil, err
		}
		r[name] = typedCell(typ, cells[i])
	}
	return r, nil
}

func typedCell(typ excelize.CellType, raw string) any {
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return ParseCell(raw)
}

// ParseCell interprets spreadsheet text: "" is nil, "true" and "false" in
// any case are booleans, and text wrapped in [] or {} is decoded as JSON
// when valid. Anything else stays a string.
func ParseCell(s string) any {
	if s == "" {
		return nil
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	first, last := s[0], s[len(s)-1]
	if (first == '[' || first == '{') && (last == ']' || last == '}') {
		if v, err := ejson.LoadsString(s); err == nil {
			return v
		}
	}
	return s
}
