package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/me/omicron/internal/segments"
	"github.com/me/omicron/pkg/model"
)

const (
	// maxExactTime is the largest magnitude at which float64 holds every integer.
	maxExactTime      = 1 << 53
	maxTilingSegments = 100_000
)

type segmentsResponse struct {
	Start    float64              `json:"start"`
	End      float64              `json:"end"`
	Chunk    float64              `json:"chunk"`
	Segment  float64              `json:"segment"`
	Overlap  float64              `json:"overlap"`
	Count    int                  `json:"count"`
	Duration int64                `json:"duration"`
	Segments segments.List[int64] `json:"segments"`
}

// handleSegments tiles ?start=&end= with the configured durations, each of
// which may be overridden by ?chunk=, ?segment= and ?overlap=.
func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	q := r.URL.Query()

	p := segments.Tiling{Chunk: s.config.Chunk, Segment: s.config.Segment, Overlap: s.config.Overlap}
	fields := []struct {
		name     string
		dst      *float64
		required bool
	}{
		{"start", &p.Start, true},
		{"end", &p.End, true},
		{"chunk", &p.Chunk, false},
		{"segment", &p.Segment, false},
		{"overlap", &p.Overlap, false},
	}
	for _, f := range fields {
		raw := q.Get(f.name)
		if raw == "" {
			if f.required {
				respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("query parameter %q is required", f.name))
				return
			}
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("query parameter %q: %v", f.name, err))
			return
		}
		*f.dst = v
	}
	if p.Start >= p.End {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("start %v must be before end %v", p.Start, p.End))
		return
	}
	if !(p.Chunk > p.Segment && p.Segment > p.Overlap && p.Overlap >= 0) {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("need chunk > segment > overlap >= 0"))
		return
	}
	if math.Abs(p.Start) > maxExactTime || math.Abs(p.End) > maxExactTime {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("start and end must be within ±2^53"))
		return
	}
	// Every output file is at least segment-overlap long.
	if n := (p.End - p.Start) / (p.Segment - p.Overlap); n > maxTilingSegments {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("span would produce up to %.0f segments, limit is %d", n, maxTilingSegments))
		return
	}

	segs := segments.IntegerOutputSegments(p)
	respondOK(w, reqID, segmentsResponse{
		Start:    p.Start,
		End:      p.End,
		Chunk:    p.Chunk,
		Segment:  p.Segment,
		Overlap:  p.Overlap,
		Count:    len(segs),
		Duration: segs.Duration(),
		Segments: segs,
	})
}

// handleChannels returns the flag-to-state-channel table as a JSON object.
func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	table := s.config.Channels()
	out := make(map[string]string, table.Len())
	for _, name := range table.Names() {
		out[name] = table.Resolve(name)
	}
	respondOK(w, reqID, out)
}
