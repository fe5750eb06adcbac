// Package extractor turns a SIMPL Windows project document into join
// facts. It deliberately stops short of a full grammar for the format:
// records are located by their bracket markers and fields by anchored
// line patterns, which is all the join map needs.
package extractor

// SignalTable maps a signal handle (its literal digit string) to the
// signal's declared name. First declaration wins; later duplicates are
// ignored.
type SignalTable map[string]string

// AddressTable maps a device handle to its hexadecimal address string,
// case preserved. First declaration wins.
type AddressTable map[string]string

// UnknownSignal is the name emitted for a join whose signal handle has
// no declaration in the document.
const UnknownSignal = "unknown signal"

// acceptedVersions is the set of Sm ObjVer values this tool understands.
var acceptedVersions = map[int]bool{1: true, 2: true, 3: true}

// Project is the parsed, read-only view of one SMW document. The two
// lookup tables are built once and shared by every device block.
type Project struct {
	Signals   SignalTable
	Addresses AddressTable

	records []Record
}

// Parse scans the whole document once and builds the global signal and
// address tables.
func Parse(doc string) *Project {
	p := &Project{
		Signals:   make(SignalTable),
		Addresses: make(AddressTable),
		records:   scanRecords(doc),
	}

	for _, r := range p.records {
		switch r.Type {
		case "Sg":
			handle := matchHandle(r.Text)
			name, ok := matchName(r.Text)
			if handle == "" || !ok {
				continue
			}
			if _, dup := p.Signals[handle]; !dup {
				p.Signals[handle] = name
			}
		case "Dv":
			// Ad and H ship in both orders across toolchain versions,
			// so each field is matched on its own.
			handle := matchHandle(r.Text)
			addr := matchAddress(r.Text)
			if handle == "" || addr == "" {
				continue
			}
			if _, dup := p.Addresses[handle]; !dup {
				p.Addresses[handle] = addr
			}
		}
	}

	return p
}

// Counts holds a device block's declared I/O counts. Output analog and
// total counts are not declared in the format for these device
// families; they mirror the input counts (see AnalogOut and TotalOut).
type Counts struct {
	DigitalIn  int
	AnalogIn   int
	TotalIn    int
	DigitalOut int
}

// SerialIn is the derived serial input count. It is reported for
// operator information only; join classification works from the range
// boundaries directly.
func (c Counts) SerialIn() int { return c.TotalIn - (c.DigitalIn + c.AnalogIn) }

// AnalogOut mirrors the analog input count. The format declares no
// output analog count for these device families.
func (c Counts) AnalogOut() int { return c.AnalogIn }

// TotalOut mirrors the total input count. The declared DO field is the
// only output count the format carries.
func (c Counts) TotalOut() int { return c.TotalIn }

// DeviceBlock is one located device definition instance.
type DeviceBlock struct {
	Model   string
	Handle  string
	Version int
	Counts  Counts
	Line    int

	text string
}

// Blocks returns every device definition block whose model name equals
// model exactly. A usable block is an Sm record with an accepted
// ObjVer and a declared total input count; matching is repeated per
// call, which is fine for a single-shot tool over a bounded document.
func (p *Project) Blocks(model string) []DeviceBlock {
	namePat := modelNamePattern(model)

	var blocks []DeviceBlock
	for _, r := range p.records {
		if r.Type != "Sm" {
			continue
		}
		if !namePat.MatchString(r.Text) {
			continue
		}
		if !acceptedVersions[matchVersion(r.Text)] {
			continue
		}
		if !hasTotalIn(r.Text) {
			continue
		}
		blocks = append(blocks, DeviceBlock{
			Model:   model,
			Handle:  matchHandle(r.Text),
			Version: matchVersion(r.Text),
			Counts: Counts{
				DigitalIn:  matchCount(digitalInPattern, r.Text),
				AnalogIn:   matchCount(analogInPattern, r.Text),
				TotalIn:    matchCount(totalInPattern, r.Text),
				DigitalOut: matchCount(digitalOutPattern, r.Text),
			},
			Line: r.Line,
			text: r.Text,
		})
	}
	return blocks
}

// Address resolves the block's device handle in the address table.
// The empty string means the handle is unknown; callers then omit the
// address suffix from output names.
func (b *DeviceBlock) Address(addresses AddressTable) string {
	if b.Handle == "" {
		return ""
	}
	return addresses[b.Handle]
}

// Direction marks a join as an input or output point.
type Direction string

const (
	Input  Direction = "Input"
	Output Direction = "Output"
)

// SignalType classifies a join by its position in the block's declared
// ranges. Unmapped is reachable: a join index past the declared total.
type SignalType string

const (
	Digital  SignalType = "Digital"
	Analog   SignalType = "Analog"
	Serial   SignalType = "Serial"
	Unmapped SignalType = "Unmapped"
)

// JoinRecord is one normalized join. Number is re-based to start at 1
// within the join's own type range, never the block-global index.
type JoinRecord struct {
	Direction Direction
	Number    int
	RawIndex  int
	Type      SignalType
	Handle    string
	Name      string
}

// Joins extracts and normalizes every join assignment in the block, in
// document order. Unresolved handles still produce a row, named
// UnknownSignal.
func (b *DeviceBlock) Joins(signals SignalTable) []JoinRecord {
	var joins []JoinRecord

	for _, m := range inputJoinPattern.FindAllStringSubmatch(b.text, -1) {
		joins = append(joins, b.join(Input, m[1], m[2], signals))
	}
	for _, m := range outputJoinPattern.FindAllStringSubmatch(b.text, -1) {
		joins = append(joins, b.join(Output, m[1], m[2], signals))
	}

	return joins
}

func (b *DeviceBlock) join(dir Direction, rawDigits, handle string, signals SignalTable) JoinRecord {
	raw := atoiDigits(rawDigits)

	digital, analog, total := b.Counts.DigitalIn, b.Counts.AnalogIn, b.Counts.TotalIn
	if dir == Output {
		digital, analog, total = b.Counts.DigitalOut, b.Counts.AnalogOut(), b.Counts.TotalOut()
	}

	sigType, number := classify(raw, digital, analog, total)

	name, ok := signals[handle]
	if !ok {
		name = UnknownSignal
	}

	return JoinRecord{
		Direction: dir,
		Number:    number,
		RawIndex:  raw,
		Type:      sigType,
		Handle:    handle,
		Name:      name,
	}
}

// classify maps a raw 1-based join index into its type sub-range and
// re-bases it. Ranges are inclusive at the upper bound:
//
//	Digital  [1, digital]
//	Analog   (digital, digital+analog]
//	Serial   (digital+analog, total]
//
// Past the declared total there is no valid re-basing target; the raw
// index is kept unchanged so the row stays deterministic.
func classify(raw, digital, analog, total int) (SignalType, int) {
	switch {
	case raw >= 1 && raw <= digital:
		return Digital, raw
	case raw > digital && raw <= digital+analog:
		return Analog, raw - digital
	case raw > digital+analog && raw <= total:
		return Serial, raw - (digital + analog)
	default:
		return Unmapped, raw
	}
}

// atoiDigits converts an already digit-only match. The patterns only
// hand over \d+ captures, so overflow aside this cannot fail.
func atoiDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
