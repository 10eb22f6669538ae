package records

import (
	"bytes"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/reoring/ejson"
)

// Fingerprint hashes the canonical (sorted, compact) encoding of v.
// Values that encode identically share a fingerprint.
func Fingerprint(v any) (uint64, error) {
	b, err := ejson.Marshal(v)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(b), nil
}

// Dedupe drops records whose canonical encoding was already seen, keeping
// the first occurrence and the original order. Fingerprints only select the
// bucket; records are compared by their encoded bytes.
func Dedupe(list ejson.Records) (ejson.Records, error) {
	return dedupe(list, xxhash.Sum64)
}

func dedupe(list ejson.Records, hash func([]byte) uint64) (ejson.Records, error) {
	seen := make(map[uint64][][]byte, len(list))
	out := make(ejson.Records, 0, len(list))
	for _, r := range list {
		b, err := ejson.Marshal(r)
		if err != nil {
			return nil, err
		}
		h := hash(b)
		if slices.ContainsFunc(seen[h], func(o []byte) bool { return bytes.Equal(o, b) }) {
			continue
		}
		seen[h] = append(seen[h], b)
		out = append(out, r)
	}
	return out, nil
}
