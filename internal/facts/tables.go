package facts

import (
	"sort"

	"github.com/panelworks/smwjoin/internal/extractor"
)

// Tables is the relational fact model for one project document.
// Each slice is a relation (table) with flat rows.
type Tables struct {
	Signals   []SignalRow  `json:"signals"`
	Addresses []AddressRow `json:"addresses"`
	Devices   []DeviceRow  `json:"devices"`
	Joins     []JoinRow    `json:"joins"`
}

type SignalRow struct {
	Handle string `json:"handle"`
	Name   string `json:"name"`
}

type AddressRow struct {
	Handle  string `json:"handle"`
	Address string `json:"address"`
}

// DeviceRow is one located device block instance. Instance numbers
// blocks of the same model in document order, starting at 1.
type DeviceRow struct {
	Model      string `json:"model"`
	Instance   int    `json:"instance"`
	Handle     string `json:"handle"`
	Address    string `json:"address"`
	Version    int    `json:"version"`
	Line       int    `json:"line"`
	DigitalIn  int    `json:"digital_in"`
	AnalogIn   int    `json:"analog_in"`
	SerialIn   int    `json:"serial_in"`
	TotalIn    int    `json:"total_in"`
	DigitalOut int    `json:"digital_out"`
	AnalogOut  int    `json:"analog_out"`
	TotalOut   int    `json:"total_out"`
}

type JoinRow struct {
	Model      string `json:"model"`
	Instance   int    `json:"instance"`
	Direction  string `json:"direction"`
	Number     int    `json:"number"`
	RawIndex   int    `json:"raw_index"`
	SignalType string `json:"signal_type"`
	Handle     string `json:"handle"`
	SignalName string `json:"signal_name"`
}

// BuildTables converts a parsed project into the normalized relational
// model, restricted to the given models. Signal and address rows are
// sorted by handle so snapshots stay byte-stable across runs.
func BuildTables(p *extractor.Project, models []string) Tables {
	tables := Tables{
		Signals:   []SignalRow{},
		Addresses: []AddressRow{},
		Devices:   []DeviceRow{},
		Joins:     []JoinRow{},
	}

	for handle, name := range p.Signals {
		tables.Signals = append(tables.Signals, SignalRow{Handle: handle, Name: name})
	}
	sort.Slice(tables.Signals, func(i, j int) bool {
		return tables.Signals[i].Handle < tables.Signals[j].Handle
	})

	for handle, addr := range p.Addresses {
		tables.Addresses = append(tables.Addresses, AddressRow{Handle: handle, Address: addr})
	}
	sort.Slice(tables.Addresses, func(i, j int) bool {
		return tables.Addresses[i].Handle < tables.Addresses[j].Handle
	})

	for _, model := range models {
		for i, block := range p.Blocks(model) {
			instance := i + 1
			tables.Devices = append(tables.Devices, DeviceRow{
				Model:      block.Model,
				Instance:   instance,
				Handle:     block.Handle,
				Address:    block.Address(p.Addresses),
				Version:    block.Version,
				Line:       block.Line,
				DigitalIn:  block.Counts.DigitalIn,
				AnalogIn:   block.Counts.AnalogIn,
				SerialIn:   block.Counts.SerialIn(),
				TotalIn:    block.Counts.TotalIn,
				DigitalOut: block.Counts.DigitalOut,
				AnalogOut:  block.Counts.AnalogOut(),
				TotalOut:   block.Counts.TotalOut(),
			})

			for _, j := range block.Joins(p.Signals) {
				tables.Joins = append(tables.Joins, JoinRow{
					Model:      block.Model,
					Instance:   instance,
					Direction:  string(j.Direction),
					Number:     j.Number,
					RawIndex:   j.RawIndex,
					SignalType: string(j.Type),
					Handle:     j.Handle,
					SignalName: j.Name,
				})
			}
		}
	}

	return tables
}
