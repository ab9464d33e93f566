package condor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindRescueDAG(t *testing.T) {
	dag := filepath.Join(t.TempDir(), "omicron.dag")
	touch(t, dag+".rescue001")

	got, err := FindRescueDAG(dag)
	if err != nil {
		t.Fatalf("FindRescueDAG: %v", err)
	}
	if got != dag+".rescue001" {
		t.Errorf("FindRescueDAG = %q", got)
	}
}

func TestFindRescueDAG_HighestNumberWins(t *testing.T) {
	dag := filepath.Join(t.TempDir(), "omicron.dag")
	for _, suffix := range []string{".rescue002", ".rescue010", ".rescue009", ".rescue.bak", ".rescue011x"} {
		touch(t, dag+suffix)
	}
	got, err := FindRescueDAG(dag)
	if err != nil {
		t.Fatalf("FindRescueDAG: %v", err)
	}
	if got != dag+".rescue010" {
		t.Errorf("FindRescueDAG = %q, want rescue010", got)
	}
}

func TestFindRescueDAG_None(t *testing.T) {
	dag := filepath.Join(t.TempDir(), "omicron.dag")
	touch(t, dag)

	_, err := FindRescueDAG(dag)
	if err == nil || !strings.Contains(err.Error(), "No rescue DAG files found") {
		t.Fatalf("error = %v", err)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("error does not match ErrNotFound")
	}
}

func TestFindRescueDAG_GlobCharactersInPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run[1]")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	dag := filepath.Join(dir, "omicron.dag")
	touch(t, dag+".rescue003")

	got, err := FindRescueDAG(dag)
	if err != nil {
		t.Fatalf("FindRescueDAG: %v", err)
	}
	if got != dag+".rescue003" {
		t.Errorf("FindRescueDAG = %q", got)
	}
}

func TestFindRescueDAG_UncleanPaths(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "omicron.dag.rescue001"))
	touch(t, filepath.Join(dir, "omicron.dag.rescue007"))

	for _, dag := range []string{
		dir + "//omicron.dag",
		dir + "/sub/../omicron.dag",
		dir + "/./omicron.dag",
	} {
		got, err := FindRescueDAG(dag)
		if err != nil {
			t.Errorf("FindRescueDAG(%q): %v", dag, err)
			continue
		}
		if got != dag+".rescue007" {
			t.Errorf("FindRescueDAG(%q) = %q, want %q", dag, got, dag+".rescue007")
		}
	}
}

func TestFindRescueDAG_RelativePath(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "omicron.dag.rescue001"))
	t.Chdir(dir)

	got, err := FindRescueDAG("./omicron.dag")
	if err != nil {
		t.Fatalf("FindRescueDAG: %v", err)
	}
	if got != "./omicron.dag.rescue001" {
		t.Errorf("FindRescueDAG = %q", got)
	}
	if _, err := os.Stat(got); err != nil {
		t.Errorf("returned path does not exist: %v", err)
	}
}
