package segments

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segments.txt")
	want := IntegerOutputSegments(Tiling{Start: 1000000000, End: 1000004000, Chunk: 124, Segment: 60, Overlap: 4})

	if err := Write(want, path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestWrite_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segments.txt")
	if err := Write(List[int64]{Seg[int64](1, 9), Seg[int64](9, 17)}, path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "1 9\n9 17\n" {
		t.Errorf("file = %q", data)
	}
}

func TestDecode(t *testing.T) {
	in := "# start end\n\n10 20\n  30\t40  \n"
	got, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := List[int64]{Seg[int64](10, 20), Seg[int64](30, 40)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode = %v, want %v", got, want)
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, in := range []string{"10\n", "a 20\n", "10 2.5\n"} {
		if _, err := Decode(strings.NewReader(in)); err == nil {
			t.Errorf("Decode(%q) succeeded, want error", in)
		} else if !strings.Contains(err.Error(), "line 1") {
			t.Errorf("Decode(%q) error %q does not name the line", in, err)
		}
	}
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Read error = %v, want os.ErrNotExist", err)
	}
}

func TestLastSegment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "segments.txt")
	if err := os.WriteFile(path, []byte("0 10\n10 20\n30 40\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LastSegment(path)
	if err != nil {
		t.Fatalf("LastSegment: %v", err)
	}
	if got != Seg[int64](30, 40) {
		t.Errorf("LastSegment = %v, want [30, 40)", got)
	}

	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LastSegment(empty); !errors.Is(err, ErrEmpty) {
		t.Errorf("LastSegment(empty) error = %v, want ErrEmpty", err)
	}
}
