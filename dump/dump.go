package dump

import "strings"

// EndOfData is the marker terminating a table data block.
const EndOfData = `\.`

const copyPrefix = "COPY "

// Identifier describes a table name as it appears in a dump.
type Identifier struct {
	// Schema name, empty for a bare table name.
	Schema string `json:"schema,omitempty"`
	Name   string `json:"name,omitempty"`
}

func (i Identifier) String() string {
	if i.Schema == "" {
		return i.Name
	}
	return i.Schema + "." + i.Name
}

// ParseIdentifier splits a dump token of the form "schema.table" at the first
// dot. The token is kept verbatim: no unquoting, no case folding.
func ParseIdentifier(s string) Identifier {
	schema, name, ok := strings.Cut(s, ".")
	if !ok {
		return Identifier{Name: s}
	}
	return Identifier{Schema: schema, Name: name}
}

// IsCopy reports whether the line introduces a table data block.
func IsCopy(line string) bool {
	return strings.HasPrefix(line, copyPrefix)
}

// CopyTarget extracts the table identifier from a data block start line: the
// second whitespace-separated token, verbatim. ok is false when the line does
// not introduce a data block or carries no identifier at all.
func CopyTarget(line string) (target string, ok bool) {
	if !IsCopy(line) {
		return "", false
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", false
	}
	return fields[1], true
}

// IsEndOfData reports whether the line, ignoring surrounding whitespace, is
// the end-of-data marker.
func IsEndOfData(line string) bool {
	return strings.TrimSpace(line) == EndOfData
}
