package nmcli

import "strings"

// emptyValue is the placeholder nmcli prints for a field without a value.
const emptyValue = "--"

// Pair is one KEY:VALUE line of multiline terse output.
type Pair struct {
	Key   string
	Value *string // nil when nmcli reported no value
}

// ParsePairs parses the output of a multiline terse query such as
// `nmcli -t device show`. Each line is split on its first colon only, since
// values may contain colons themselves. Lines without a colon are skipped.
func ParsePairs(output string) []Pair {
	var pairs []Pair
	for _, line := range lines(output) {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		pairs = append(pairs, Pair{Key: key, Value: optional(value)})
	}
	return pairs
}

// ParseRecords parses the output of a tabular terse query such as
// `nmcli -t -f A,B,C device`. Each line is split with SplitRecord; lines
// with fewer than fields columns are skipped.
func ParseRecords(output string, fields int) [][]string {
	var records [][]string
	for _, line := range lines(output) {
		if record, ok := SplitRecord(line, fields); ok {
			records = append(records, record)
		}
	}
	return records
}

// lines splits output on newlines with no limit on line length, dropping a
// trailing carriage return from each line.
func lines(output string) []string {
	split := strings.Split(output, "\n")
	for i, line := range split {
		split[i] = strings.TrimSuffix(line, "\r")
	}
	return split
}

// SplitRecord splits one tabular terse line into exactly fields columns.
//
// Columns are separated by unescaped colons; nmcli escapes literal colons and
// backslashes inside values as `\:` and `\\`. Any columns beyond fields are
// joined back into the last one with ":". The sentinel "--" becomes "".
// It returns false if the line has fewer than fields columns.
func SplitRecord(line string, fields int) ([]string, bool) {
	if fields <= 0 {
		return nil, false
	}

	var parts []string
	var cur strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line):
			i++
			cur.WriteByte(line[i])
		case c == ':':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	parts = append(parts, cur.String())

	if len(parts) < fields {
		return nil, false
	}
	if len(parts) > fields {
		last := strings.Join(parts[fields-1:], ":")
		parts = append(parts[:fields-1], last)
	}
	for i, p := range parts {
		if p == emptyValue {
			parts[i] = ""
		}
	}
	return parts, true
}

// optional returns nil for values nmcli uses to mean "nothing".
func optional(value string) *string {
	if value == "" || value == emptyValue {
		return nil
	}
	return &value
}
