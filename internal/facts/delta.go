package facts

import "strconv"

// Delta captures added and removed fact rows between two snapshots.
type Delta struct {
	Added   Tables `json:"added"`
	Removed Tables `json:"removed"`
}

// ComputeDelta computes row-level additions and removals between two
// snapshots of the same project.
func ComputeDelta(prev, next Tables) Delta {
	return Delta{
		Added:   diffTables(prev, next),
		Removed: diffTables(next, prev),
	}
}

func diffTables(from, to Tables) Tables {
	return Tables{
		Signals:   diffRows(from.Signals, to.Signals, signalKey),
		Addresses: diffRows(from.Addresses, to.Addresses, addressKey),
		Devices:   diffRows(from.Devices, to.Devices, deviceKey),
		Joins:     diffRows(from.Joins, to.Joins, joinKey),
	}
}

func signalKey(r SignalRow) string {
	return r.Handle + "|" + r.Name
}

func addressKey(r AddressRow) string {
	return r.Handle + "|" + r.Address
}

func deviceKey(r DeviceRow) string {
	return r.Model + "|" + intKey(r.Instance) + "|" + r.Handle + "|" + r.Address +
		"|" + intKey(r.Version) + "|" + intKey(r.DigitalIn) + "|" + intKey(r.AnalogIn) +
		"|" + intKey(r.TotalIn) + "|" + intKey(r.DigitalOut)
}

func joinKey(r JoinRow) string {
	return r.Model + "|" + intKey(r.Instance) + "|" + r.Direction + "|" +
		intKey(r.Number) + "|" + intKey(r.RawIndex) + "|" + r.SignalType + "|" +
		r.Handle + "|" + r.SignalName
}

func diffRows[T any](from, to []T, key func(T) string) []T {
	fromSet := make(map[string]T, len(from))
	for _, row := range from {
		fromSet[key(row)] = row
	}
	diff := []T{}
	for _, row := range to {
		if _, ok := fromSet[key(row)]; !ok {
			diff = append(diff, row)
		}
	}
	return diff
}

func intKey(v int) string {
	return strconv.Itoa(v)
}
