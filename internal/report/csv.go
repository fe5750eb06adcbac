// Package report writes normalized join tables to delimited output
// files and derives the per-instance output file names.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/panelworks/smwjoin/internal/facts"
)

// Header is the fixed column set of the emitted table.
var Header = []string{"Join_Direction", "Join_Number", "Signal_Type", "Signal_Name"}

// WriteCSV writes the header and one row per join to w. Quoting of
// embedded delimiters is handled by encoding/csv.
func WriteCSV(w io.Writer, joins []facts.JoinRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, j := range joins {
		row := []string{j.Direction, strconv.Itoa(j.Number), j.SignalType, j.SignalName}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile emits the join table to path. An empty table writes
// nothing at all, not even a header-only file; the false return lets
// the caller report the skip as an informational outcome.
func WriteFile(path string, joins []facts.JoinRow) (bool, error) {
	if len(joins) == 0 {
		return false, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := WriteCSV(f, joins); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}
