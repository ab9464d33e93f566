package segments

import (
	"math/rand"
	"reflect"
	"testing"
	"time"
)

func TestOutputSegments_FullFiles(t *testing.T) {
	got := IntegerOutputSegments(Tiling{Start: 0, End: 100, Chunk: 10, Segment: 5, Overlap: 2})

	want := List[int64]{}
	for s := int64(1); s < 97; s += 8 {
		want = append(want, Seg(s, s+8))
	}
	// 2s tail is not longer than a 3s minimal file, so it stays whole.
	want = append(want, Seg[int64](97, 99))

	if !reflect.DeepEqual(got, want) {
		t.Errorf("OutputSegments =\n%v\nwant\n%v", got, want)
	}
}

func TestOutputSegments_TailSubdivision(t *testing.T) {
	got := IntegerOutputSegments(Tiling{Start: 0, End: 200, Chunk: 64, Segment: 16, Overlap: 4})
	want := List[int64]{
		Seg[int64](2, 62),
		Seg[int64](62, 122),
		Seg[int64](122, 182),
		Seg[int64](182, 194),
		Seg[int64](194, 198),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("OutputSegments = %v, want %v", got, want)
	}
}

func TestOutputSegments_FractionalPadding(t *testing.T) {
	p := Tiling{Start: 0, End: 20, Chunk: 10, Segment: 5, Overlap: 3}

	raw := OutputSegments(p)
	wantRaw := List[float64]{Seg(1.5, 8.5), Seg(8.5, 15.5), Seg(15.5, 17.5), Seg(17.5, 18.5)}
	if !reflect.DeepEqual(raw, wantRaw) {
		t.Errorf("OutputSegments = %v, want %v", raw, wantRaw)
	}

	wantInt := List[int64]{Seg[int64](1, 8), Seg[int64](8, 15), Seg[int64](15, 17), Seg[int64](17, 18)}
	if got := IntegerOutputSegments(p); !reflect.DeepEqual(got, wantInt) {
		t.Errorf("IntegerOutputSegments = %v, want %v", got, wantInt)
	}
}

func TestOutputSegments_Degenerate(t *testing.T) {
	tests := []Tiling{
		{Start: 0, End: 2, Chunk: 10, Segment: 5, Overlap: 2},
		{Start: 0, End: 1, Chunk: 10, Segment: 5, Overlap: 2},
		{Start: 100, End: 104, Chunk: 64, Segment: 16, Overlap: 4},
	}
	for _, p := range tests {
		if got := OutputSegments(p); len(got) != 0 {
			t.Errorf("OutputSegments(%+v) = %v, want empty", p, got)
		}
	}
}

func TestOutputSegments_BeyondFloatResolution(t *testing.T) {
	tests := []Tiling{
		{Start: 1e17, End: 1e17 + 1000, Chunk: 2, Segment: 1.5, Overlap: 1},
		{Start: 1e17, End: 1e17 + 1000, Chunk: 64, Segment: 1.5, Overlap: 1},
	}
	for _, p := range tests {
		done := make(chan List[float64], 1)
		go func() { done <- OutputSegments(p) }()
		select {
		case got := <-done:
			for i, s := range got {
				if s.End <= s.Start {
					t.Errorf("%+v: segment %d = %v is empty", p, i, s)
				}
				if i > 0 && s.Start != got[i-1].End {
					t.Errorf("%+v: gap or overlap before segment %d", p, i)
				}
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("OutputSegments(%+v) did not return", p)
		}
	}
}

func TestOutputSegments_PartitionsPaddedSpan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		overlap := rng.Int63n(10)
		segment := overlap + 1 + rng.Int63n(20)
		chunk := segment + 1 + rng.Int63n(100)
		start := rng.Int63n(1_000_000)
		end := start + overlap + 1 + rng.Int63n(1000)

		p := Tiling{
			Start:   float64(start),
			End:     float64(end),
			Chunk:   float64(chunk),
			Segment: float64(segment),
			Overlap: float64(overlap),
		}
		got := OutputSegments(p)
		if len(got) == 0 {
			t.Fatalf("%+v: empty result", p)
		}

		padding := p.Overlap / 2
		if got[0].Start != p.Start+padding {
			t.Fatalf("%+v: first start %v, want %v", p, got[0].Start, p.Start+padding)
		}
		if last := got[len(got)-1]; last.End != p.End-padding {
			t.Fatalf("%+v: last end %v, want %v", p, last.End, p.End-padding)
		}
		for j, s := range got {
			if s.End <= s.Start {
				t.Fatalf("%+v: empty segment %v", p, s)
			}
			if j > 0 && got[j-1].End != s.Start {
				t.Fatalf("%+v: gap or overlap between %v and %v", p, got[j-1], s)
			}
			if s.Duration() > p.Chunk-p.Overlap {
				t.Fatalf("%+v: segment %v longer than a full file", p, s)
			}
		}
	}
}
