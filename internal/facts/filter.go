package facts

// FilterModel narrows the device and join relations to a single model.
// The global signal and address tables are document-wide lookups and
// pass through untouched.
func FilterModel(t Tables, model string) Tables {
	out := Tables{
		Signals:   t.Signals,
		Addresses: t.Addresses,
		Devices:   []DeviceRow{},
		Joins:     []JoinRow{},
	}

	for _, d := range t.Devices {
		if d.Model == model {
			out.Devices = append(out.Devices, d)
		}
	}
	for _, j := range t.Joins {
		if j.Model == model {
			out.Joins = append(out.Joins, j)
		}
	}

	return out
}

// Models returns the distinct model names present in the device
// relation, in first-appearance order.
func Models(t Tables) []string {
	seen := make(map[string]bool)
	var models []string
	for _, d := range t.Devices {
		if !seen[d.Model] {
			seen[d.Model] = true
			models = append(models, d.Model)
		}
	}
	return models
}
