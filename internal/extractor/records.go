package extractor

import "strings"

// Record is one bracket-bounded span of the document. SMW records are
// flat: a record opens at a line holding "[" and runs to the nearest
// line holding "]".
type Record struct {
	// Type is the record's ObjTp tag ("Sg", "Dv", "Sm", ...), or ""
	// when the record carries none.
	Type string

	// Text is the record body between the markers, marker lines excluded.
	Text string

	// Line is the 1-based line number of the opening marker.
	Line int
}

// scanRecords splits a document into its bracket-bounded records.
// Stray opening markers inside a record and trailing text after the
// last closing marker are ignored, matching the loose tolerance the
// format requires.
func scanRecords(doc string) []Record {
	var records []Record

	inRecord := false
	startLine := 0
	var body []string

	for i, line := range strings.Split(doc, "\n") {
		trimmed := strings.TrimRight(line, "\r")
		switch {
		case !inRecord && trimmed == "[":
			inRecord = true
			startLine = i + 1
			body = body[:0]
		case inRecord && trimmed == "]":
			text := strings.Join(body, "\n")
			records = append(records, Record{
				Type: matchObjTp(text),
				Text: text,
				Line: startLine,
			})
			inRecord = false
		case inRecord:
			body = append(body, line)
		}
	}

	return records
}
