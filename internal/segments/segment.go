// Package segments implements the interval algebra used to describe which
// spans of time a pipeline run covers, and which output files it produces.
package segments

import (
	"fmt"
	"sort"
)

// Number is the set of time-axis types a Segment can be built on.
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Segment is the half-open span [Start, End).
type Segment[T Number] struct {
	Start T `json:"start"`
	End   T `json:"end"`
}

// Seg is shorthand for Segment{Start: start, End: end}.
func Seg[T Number](start, end T) Segment[T] {
	return Segment[T]{Start: start, End: end}
}

// Duration returns the absolute length of the segment.
func (s Segment[T]) Duration() T {
	if s.End < s.Start {
		return s.Start - s.End
	}
	return s.End - s.Start
}

// Contains reports whether t lies within [Start, End).
func (s Segment[T]) Contains(t T) bool {
	return s.Start <= t && t < s.End
}

func (s Segment[T]) String() string {
	return fmt.Sprintf("[%v, %v)", s.Start, s.End)
}

// List is an ordered sequence of segments. A coalesced List is sorted by
// Start and pairwise disjoint.
type List[T Number] []Segment[T]

// Coalesce returns a new sorted, disjoint list in which overlapping or
// touching segments of l are merged. l itself is not modified.
func (l List[T]) Coalesce() List[T] {
	if len(l) == 0 {
		return List[T]{}
	}
	sorted := make(List[T], len(l))
	copy(sorted, l)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End < sorted[j].End
		}
		return sorted[i].Start < sorted[j].Start
	})

	out := List[T]{sorted[0]}
	for _, s := range sorted[1:] {
		last := &out[len(out)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// Union returns the coalesced union of a and b.
func Union[T Number](a, b List[T]) List[T] {
	all := make(List[T], 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	return all.Coalesce()
}

// Intersect returns the segments covered by both a and b.
func Intersect[T Number](a, b List[T]) List[T] {
	a, b = a.Coalesce(), b.Coalesce()
	out := List[T]{}
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := max(a[i].Start, b[j].Start)
		end := min(a[i].End, b[j].End)
		if start < end {
			out = append(out, Seg(start, end))
		}
		if a[i].End < b[j].End {
			i++
		} else {
			j++
		}
	}
	return out
}

// Difference returns the parts of a not covered by b.
func Difference[T Number](a, b List[T]) List[T] {
	a, b = a.Coalesce(), b.Coalesce()
	out := List[T]{}
	j := 0
	for _, s := range a {
		start := s.Start
		for j < len(b) && b[j].End <= start {
			j++
		}
		for k := j; k < len(b) && b[k].Start < s.End; k++ {
			if b[k].Start > start {
				out = append(out, Seg(start, b[k].Start))
			}
			if b[k].End > start {
				start = b[k].End
			}
		}
		if start < s.End {
			out = append(out, Seg(start, s.End))
		}
	}
	return out
}

// Extent returns the smallest segment covering every segment in l.
// The second result is false for an empty list.
func (l List[T]) Extent() (Segment[T], bool) {
	if len(l) == 0 {
		return Segment[T]{}, false
	}
	ext := l[0]
	for _, s := range l[1:] {
		ext.Start = min(ext.Start, s.Start)
		ext.End = max(ext.End, s.End)
	}
	return ext, true
}

// Contains reports whether any segment in l contains t.
func (l List[T]) Contains(t T) bool {
	for _, s := range l {
		if s.Contains(t) {
			return true
		}
	}
	return false
}

// Duration returns the summed duration of every segment in l.
func (l List[T]) Duration() T {
	var total T
	for _, s := range l {
		total += s.Duration()
	}
	return total
}
