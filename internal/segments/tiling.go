package segments

// Tiling holds the numbers that determine which output files an analysis
// job writes. Callers are expected to supply Start < End and
// Chunk > Segment > Overlap >= 0; nothing here checks that.
type Tiling struct {
	Start   float64
	End     float64
	Chunk   float64
	Segment float64
	Overlap float64
}

// OutputSegments returns one segment per output file the job writes.
//
// Half of the overlap is lost at each end of the span. The rest is cut into
// files of Chunk-Overlap seconds; a tail shorter than that but longer than
// Segment-Overlap is instead written as consecutive Segment-Overlap files,
// the last one clipped. The result partitions the padded span exactly and
// is empty when End-Start <= Overlap. Tiling stops early when the
// durations are too small to advance a float64 cursor at Start.
func OutputSegments(p Tiling) List[float64] {
	padding := p.Overlap / 2
	usableStart := p.Start + padding
	usableEnd := p.End - padding
	fullFile := p.Chunk - p.Overlap
	tailUnit := p.Segment - p.Overlap

	out := List[float64]{}
	for t := usableStart; t < usableEnd; {
		e := min(t+fullFile, usableEnd)
		if e <= t {
			// fullFile is below the float64 resolution at t.
			break
		}
		if span := e - t; tailUnit < span && span < fullFile {
			for s := t; s < e; {
				next := min(s+tailUnit, e)
				if next <= s {
					next = e
				}
				out = append(out, Seg(s, next))
				s = next
			}
		} else {
			out = append(out, Seg(t, e))
		}
		t = e
	}
	return out
}

// IntegerOutputSegments is OutputSegments with endpoints truncated to
// whole seconds, the form written to segment files.
var IntegerOutputSegments = Integral(OutputSegments)
