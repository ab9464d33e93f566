package segments

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrEmpty is returned by LastSegment when a file holds no segments.
var ErrEmpty = errors.New("no segments")

// Read parses a two-column segment file, one "<start> <end>" pair per line.
// Blank lines and lines starting with '#' are skipped.
func Read(path string) (List[int64], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses the two-column segment format from r.
func Decode(r io.Reader) (List[int64], error) {
	out := List[int64]{}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: want 2 columns, got %d", lineNo, len(fields))
		}
		start, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: start: %w", lineNo, err)
		}
		end, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: end: %w", lineNo, err)
		}
		out = append(out, Seg(start, end))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Write replaces the contents of path with l in the two-column format.
func Write(l List[int64], path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, l)
}

// Encode writes l to w, one "<start> <end>" line per segment.
func Encode(w io.Writer, l List[int64]) error {
	bw := bufio.NewWriter(w)
	for _, s := range l {
		if _, err := fmt.Fprintf(bw, "%d %d\n", s.Start, s.End); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LastSegment returns the final segment recorded in path, typically the
// span covered by the most recent run.
func LastSegment(path string) (Segment[int64], error) {
	l, err := Read(path)
	if err != nil {
		return Segment[int64]{}, err
	}
	if len(l) == 0 {
		return Segment[int64]{}, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return l[len(l)-1], nil
}
