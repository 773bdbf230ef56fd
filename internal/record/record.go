package record

import "sort"

// Record is one parsed input row, keyed by its original column header.
// Headers are not fixed across exports; use Resolve to map them to
// canonical fields.
type Record map[string]string

// SortedKeys returns the record's keys in lexical order. Used as a
// deterministic fallback when the original header order is unknown
// (e.g. records decoded from a JSON array).
func SortedKeys(r Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
