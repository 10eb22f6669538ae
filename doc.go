// Package ejson provides utilities for JSON-like records: a codec facade over
// pluggable JSON drivers, plus record-oriented helpers in subpackages.
//
//   - Encoding with Dumps/Marshal: pretty printing, ASCII escaping and a
//     Default hook for values the driver cannot represent (Null, sets,
//     frozen records, bimaps).
//   - Decoding with Loads/LoadsRecord/LoadsRecords: duplicate-key, depth and
//     size enforcement and an ErrorHandler (see repair.Handler).
//   - A stable error model via Issues (JSON Pointer, code, message).
//
// Subpackages:
//
//   - flatten: nested records to single-level records and back.
//   - repair: fixes common malformations (unquoted keys, single quotes,
//     control characters, stray quotes).
//   - records: map-by-field, safe path access, merging, key casing,
//     fingerprints and raw gjson queries.
//   - frozen, bimap: immutable and bidirectional mappings.
//   - jsonio: JSON, ND-JSON, CSV, Excel and YAML files, read in batches.
//
// Importing github.com/reoring/ejson/source switches the default driver to
// goccy/go-json:
//
//	import _ "github.com/reoring/ejson/source"
//
//	r, err := ejson.LoadsRecord(data, ejson.LoadOpt{ErrorHandler: repair.Handler()})
//	s, err := ejson.Dumps(r, ejson.DumpOpt{Pretty: true})
package ejson
