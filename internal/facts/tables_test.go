package facts

import (
	"testing"

	"github.com/panelworks/smwjoin/internal/extractor"
)

const sampleDoc = `[
ObjTp=Sg
H=10
Nm=Mute
]
[
ObjTp=Dv
Ad=1F
H=5
]
[
ObjTp=Sm
H=5
Nm=TSW-560
ObjVer=2
DI=2
AI=1
TI=3
DO=1
I1=10
I2=99
I3=10
O1=10
]
`

func TestBuildTablesPopulatesRelations(t *testing.T) {
	p := extractor.Parse(sampleDoc)
	tables := BuildTables(p, []string{"TSW-560", "TSW-760"})

	if len(tables.Signals) != 1 {
		t.Fatalf("expected 1 signal row, got %d", len(tables.Signals))
	}
	if len(tables.Addresses) != 1 {
		t.Fatalf("expected 1 address row, got %d", len(tables.Addresses))
	}
	if len(tables.Devices) != 1 {
		t.Fatalf("expected 1 device row, got %d", len(tables.Devices))
	}
	if len(tables.Joins) != 4 {
		t.Fatalf("expected 4 join rows, got %d", len(tables.Joins))
	}

	d := tables.Devices[0]
	if d.Model != "TSW-560" || d.Instance != 1 || d.Address != "1F" {
		t.Errorf("device row = %+v", d)
	}
	if d.AnalogOut != d.AnalogIn || d.TotalOut != d.TotalIn {
		t.Errorf("derived output counts broken: %+v", d)
	}
	if d.SerialIn != 0 {
		t.Errorf("SerialIn = %d, want 0", d.SerialIn)
	}
}

func TestBuildTablesNumbersInstancesPerModel(t *testing.T) {
	doc := sampleDoc + `[
ObjTp=Sm
H=7
Nm=TSW-560
ObjVer=2
TI=3
I1=10
]
`
	tables := BuildTables(extractor.Parse(doc), []string{"TSW-560"})

	if len(tables.Devices) != 2 {
		t.Fatalf("expected 2 device rows, got %d", len(tables.Devices))
	}
	if tables.Devices[0].Instance != 1 || tables.Devices[1].Instance != 2 {
		t.Errorf("instances = %d, %d; want 1, 2",
			tables.Devices[0].Instance, tables.Devices[1].Instance)
	}
	last := tables.Joins[len(tables.Joins)-1]
	if last.Instance != 2 {
		t.Errorf("last join instance = %d, want 2", last.Instance)
	}
}

func TestFilterModel(t *testing.T) {
	doc := sampleDoc + `[
ObjTp=Sm
H=7
Nm=TSW-760
ObjVer=2
TI=3
I1=10
]
`
	tables := BuildTables(extractor.Parse(doc), []string{"TSW-560", "TSW-760"})

	filtered := FilterModel(tables, "TSW-760")
	if len(filtered.Devices) != 1 || filtered.Devices[0].Model != "TSW-760" {
		t.Fatalf("filtered devices = %+v", filtered.Devices)
	}
	for _, j := range filtered.Joins {
		if j.Model != "TSW-760" {
			t.Errorf("join leaked through filter: %+v", j)
		}
	}
	if len(filtered.Signals) != len(tables.Signals) {
		t.Errorf("signal lookup table must pass through the filter")
	}

	models := Models(tables)
	if len(models) != 2 || models[0] != "TSW-560" || models[1] != "TSW-760" {
		t.Errorf("Models = %v", models)
	}
}
