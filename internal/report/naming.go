package report

import (
	"path/filepath"
	"strings"
)

// Output name suffixes for the two operating modes.
const (
	MapSuffix       = "_map.csv"
	SignalMapSuffix = "_signal_map.csv"
)

// OutputName derives the default output file name for one device
// block instance:
//
//	{input base name}_{model}{_address}?{suffix}
//
// The address component appears only when the block's device handle
// resolved in the address table. The file lands next to the input.
func OutputName(inputPath, model, address, suffix string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	name := base + "_" + model
	if address != "" {
		name += "_" + address
	}
	name += suffix

	dir := filepath.Dir(inputPath)
	return filepath.Join(dir, name)
}
