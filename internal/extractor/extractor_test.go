package extractor

import "testing"

func record(lines ...string) string {
	doc := "[\n"
	for _, l := range lines {
		doc += l + "\n"
	}
	return doc + "]\n"
}

func TestParseBuildsSignalTable(t *testing.T) {
	doc := record("ObjTp=Sg", "H=10", "Nm=Mute", "SgTp=4") +
		record("ObjTp=Sg", "H=11", "Nm=  Volume Up  ") +
		record("ObjTp=Sg", "H=10", "Nm=Shadowed Duplicate")

	p := Parse(doc)

	if got := p.Signals["10"]; got != "Mute" {
		t.Errorf("signal 10 = %q, want %q (first occurrence wins)", got, "Mute")
	}
	if got := p.Signals["11"]; got != "Volume Up" {
		t.Errorf("signal 11 = %q, want trimmed %q", got, "Volume Up")
	}
}

func TestParseSkipsIncompleteSignalRecords(t *testing.T) {
	doc := record("ObjTp=Sg", "Nm=No Handle") +
		record("ObjTp=Sg", "H=12")

	p := Parse(doc)

	if len(p.Signals) != 0 {
		t.Errorf("expected no signals, got %v", p.Signals)
	}
}

func TestParseBuildsAddressTableEitherFieldOrder(t *testing.T) {
	doc := record("ObjTp=Dv", "Ad=1F", "H=5") +
		record("ObjTp=Dv", "H=6", "Ad=2a") +
		record("ObjTp=Dv", "Ad=FF", "H=5")

	p := Parse(doc)

	if got := p.Addresses["5"]; got != "1F" {
		t.Errorf("address 5 = %q, want %q (first occurrence wins)", got, "1F")
	}
	if got := p.Addresses["6"]; got != "2a" {
		t.Errorf("address 6 = %q, want case-preserved %q", got, "2a")
	}
}

func TestFieldPatternsAnchorTagNames(t *testing.T) {
	// SDI must never satisfy the DI pattern, and a handle on a longer
	// tag line must not leak into H.
	doc := record("ObjTp=Sm", "Nm=TSW-560", "ObjVer=2", "SDI=99", "DI=2", "AI=1", "TI=3", "DO=1", "H=5")

	blocks := Parse(doc).Blocks("TSW-560")
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if got := blocks[0].Counts.DigitalIn; got != 2 {
		t.Errorf("DigitalIn = %d, want 2 (SDI must not match DI)", got)
	}
}

func TestBlocksExactModelMatch(t *testing.T) {
	doc := record("ObjTp=Sm", "Nm=TSW-560-NAV", "ObjVer=2", "TI=3", "H=1") +
		record("ObjTp=Sm", "Nm=TSW-560", "ObjVer=2", "TI=3", "H=2") +
		record("ObjTp=Sm", "Nm=TSW-5601", "ObjVer=2", "TI=3", "H=3")

	p := Parse(doc)

	blocks := p.Blocks("TSW-560")
	if len(blocks) != 1 || blocks[0].Handle != "2" {
		t.Fatalf("Blocks(TSW-560) = %+v, want exactly the handle-2 block", blocks)
	}
	if got := p.Blocks("TSW-5601"); len(got) != 1 || got[0].Handle != "3" {
		t.Fatalf("Blocks(TSW-5601) = %+v, want exactly the handle-3 block", got)
	}
}

func TestBlocksFiltering(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want int
	}{
		{
			name: "accepted version",
			doc:  record("ObjTp=Sm", "Nm=TSW-760", "ObjVer=2", "TI=3"),
			want: 1,
		},
		{
			name: "rejected version",
			doc:  record("ObjTp=Sm", "Nm=TSW-760", "ObjVer=9", "TI=3"),
			want: 0,
		},
		{
			name: "missing version",
			doc:  record("ObjTp=Sm", "Nm=TSW-760", "TI=3"),
			want: 0,
		},
		{
			name: "missing total input count",
			doc:  record("ObjTp=Sm", "Nm=TSW-760", "ObjVer=2", "DI=5"),
			want: 0,
		},
		{
			name: "wrong record type",
			doc:  record("ObjTp=Sg", "Nm=TSW-760", "ObjVer=2", "TI=3"),
			want: 0,
		},
		{
			name: "two instances",
			doc: record("ObjTp=Sm", "Nm=TSW-760", "ObjVer=1", "TI=3") +
				record("ObjTp=Sm", "Nm=TSW-760", "ObjVer=3", "TI=8"),
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := Parse(tt.doc).Blocks("TSW-760")
			if len(blocks) != tt.want {
				t.Errorf("got %d blocks, want %d", len(blocks), tt.want)
			}
		})
	}
}

func TestDerivedOutputCounts(t *testing.T) {
	doc := record("ObjTp=Sm", "Nm=TSW-560", "ObjVer=2", "DI=10", "AI=4", "TI=20", "DO=7")

	blocks := Parse(doc).Blocks("TSW-560")
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	c := blocks[0].Counts

	// The format declares no output analog/total fields; they mirror
	// the input side. DO is the one declared output count.
	if c.AnalogOut() != 4 {
		t.Errorf("AnalogOut = %d, want 4", c.AnalogOut())
	}
	if c.TotalOut() != 20 {
		t.Errorf("TotalOut = %d, want 20", c.TotalOut())
	}
	if c.DigitalOut != 7 {
		t.Errorf("DigitalOut = %d, want 7", c.DigitalOut)
	}
	if c.SerialIn() != 6 {
		t.Errorf("SerialIn = %d, want 6", c.SerialIn())
	}
}

func TestClassifyRanges(t *testing.T) {
	// digital=2, analog=3, total=7 -> serial occupies (5,7]
	tests := []struct {
		raw      int
		wantType SignalType
		wantNum  int
	}{
		{1, Digital, 1},
		{2, Digital, 2},
		{3, Analog, 1},
		{5, Analog, 3},
		{6, Serial, 1},
		{7, Serial, 2},
		{8, Unmapped, 8},
		{0, Unmapped, 0},
	}

	for _, tt := range tests {
		gotType, gotNum := classify(tt.raw, 2, 3, 7)
		if gotType != tt.wantType || gotNum != tt.wantNum {
			t.Errorf("classify(%d) = (%s, %d), want (%s, %d)",
				tt.raw, gotType, gotNum, tt.wantType, tt.wantNum)
		}
	}
}

func TestJoinsNormalization(t *testing.T) {
	doc := record("ObjTp=Sg", "H=10", "Nm=Mute") +
		record("ObjTp=Sm", "Nm=TSW-560", "ObjVer=2", "H=5",
			"DI=2", "AI=1", "TI=4", "DO=1",
			"I1=10", "I2=99", "I3=10", "I4=10", "O1=10")

	p := Parse(doc)
	blocks := p.Blocks("TSW-560")
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}

	joins := blocks[0].Joins(p.Signals)

	want := []JoinRecord{
		{Direction: Input, Number: 1, RawIndex: 1, Type: Digital, Handle: "10", Name: "Mute"},
		{Direction: Input, Number: 2, RawIndex: 2, Type: Digital, Handle: "99", Name: UnknownSignal},
		{Direction: Input, Number: 1, RawIndex: 3, Type: Analog, Handle: "10", Name: "Mute"},
		{Direction: Input, Number: 1, RawIndex: 4, Type: Serial, Handle: "10", Name: "Mute"},
		{Direction: Output, Number: 1, RawIndex: 1, Type: Digital, Handle: "10", Name: "Mute"},
	}

	if len(joins) != len(want) {
		t.Fatalf("got %d joins, want %d: %+v", len(joins), len(want), joins)
	}
	for i, w := range want {
		if joins[i] != w {
			t.Errorf("join[%d] = %+v, want %+v", i, joins[i], w)
		}
	}
}

func TestJoinsOutputRangesUseDerivedCounts(t *testing.T) {
	// DO=1 declared, AO mirrors AI=1, TO mirrors TI=3: O2 is analog 1,
	// O3 serial 1, O4 past the derived total and therefore unmapped.
	doc := record("ObjTp=Sm", "Nm=TSW-560", "ObjVer=2",
		"DI=2", "AI=1", "TI=3", "DO=1",
		"O2=50", "O3=50", "O4=50")

	p := Parse(doc)
	joins := p.Blocks("TSW-560")[0].Joins(p.Signals)

	want := []struct {
		typ SignalType
		num int
	}{
		{Analog, 1},
		{Serial, 1},
		{Unmapped, 4},
	}
	if len(joins) != len(want) {
		t.Fatalf("got %d joins, want %d", len(joins), len(want))
	}
	for i, w := range want {
		if joins[i].Type != w.typ || joins[i].Number != w.num {
			t.Errorf("join[%d] = (%s, %d), want (%s, %d)",
				i, joins[i].Type, joins[i].Number, w.typ, w.num)
		}
	}
}

func TestAddressResolution(t *testing.T) {
	doc := record("ObjTp=Dv", "Ad=1F", "H=5") +
		record("ObjTp=Sm", "Nm=TSW-560", "ObjVer=2", "H=5", "TI=3") +
		record("ObjTp=Sm", "Nm=TSW-760", "ObjVer=2", "H=9", "TI=3")

	p := Parse(doc)

	if got := p.Blocks("TSW-560")[0].Address(p.Addresses); got != "1F" {
		t.Errorf("address = %q, want 1F", got)
	}
	if got := p.Blocks("TSW-760")[0].Address(p.Addresses); got != "" {
		t.Errorf("address = %q, want empty for unresolved handle", got)
	}
}

func TestScanRecordsCRLF(t *testing.T) {
	doc := "[\r\nObjTp=Sg\r\nH=10\r\nNm=Mute\r\n]\r\n"

	p := Parse(doc)
	if got := p.Signals["10"]; got != "Mute" {
		t.Errorf("signal 10 = %q, want %q with CRLF line endings", got, "Mute")
	}
}
