package subfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const subNoReqs = `
universe = vanilla
executable = /path/to/omicron
arguments = "some command"
`

const subOneReq = subNoReqs + `
Requirements = TARGET.UidDomain == "cs.wisc.edu"
`

const subMultiReqs = subNoReqs + `
Requirements = TARGET.UidDomain == "cs.wisc.edu" && \
               TARGET.FileSystemDomain == "cs.wisc.edu"
`

func TestPatch_NoOverridesUnchanged(t *testing.T) {
	for _, sub := range []string{subNoReqs, subOneReq, subMultiReqs} {
		if got := Patch(sub, Overrides{}); got != sub {
			t.Errorf("Patch changed description:\n%s", got)
		}
	}
}

func TestPatch_Arguments(t *testing.T) {
	got := Patch(subNoReqs, Overrides{Arguments: "new arguments"})
	if !strings.HasSuffix(got, "\narguments = \" new argumentssome command\"\n") {
		t.Errorf("arguments not prepended:\n%s", got)
	}
	// Everything before the arguments line is untouched.
	if !strings.HasPrefix(got, "\nuniverse = vanilla\nexecutable = /path/to/omicron\n") {
		t.Errorf("other lines changed:\n%s", got)
	}
}

func TestPatch_SingularityWithoutRequirements(t *testing.T) {
	got := Patch(subNoReqs, Overrides{SingularityImage: "image.sif"})
	if !strings.HasPrefix(got, "+SingularityImage = image.sif\nRequirements = HasSingularity") {
		t.Errorf("unexpected prefix:\n%s", got)
	}
	if !strings.HasSuffix(got, subNoReqs) {
		t.Errorf("original lines not preserved:\n%s", got)
	}
}

func TestPatch_SingularityWithOneRequirement(t *testing.T) {
	got := Patch(subOneReq, Overrides{SingularityImage: "image.sif"})
	if !strings.HasPrefix(got, "+SingularityImage = image.sif\n") {
		t.Errorf("unexpected prefix:\n%s", got)
	}
	reqs := "Requirements = TARGET.UidDomain == \"cs.wisc.edu\" && \\\n" +
		"               HasSingularity\n"
	if !strings.Contains(got, reqs) {
		t.Errorf("requirements not extended:\n%s", got)
	}
}

func TestPatch_SingularityWithMultilineRequirements(t *testing.T) {
	got := Patch(subMultiReqs, Overrides{SingularityImage: "image.sif"})
	if !strings.HasPrefix(got, "+SingularityImage = image.sif\n") {
		t.Errorf("unexpected prefix:\n%s", got)
	}
	reqs := "Requirements = TARGET.UidDomain == \"cs.wisc.edu\" && \\\n" +
		"               TARGET.FileSystemDomain == \"cs.wisc.edu\" && \\\n" +
		"               HasSingularity\n"
	if !strings.Contains(got, reqs) {
		t.Errorf("requirements not extended:\n%s", got)
	}
}

func TestPatch_BothOverrides(t *testing.T) {
	got := Patch(subOneReq, Overrides{Arguments: "-v", SingularityImage: "/cvmfs/img.sif"})
	want := "+SingularityImage = /cvmfs/img.sif\n" +
		"\n" +
		"universe = vanilla\n" +
		"executable = /path/to/omicron\n" +
		"arguments = \" -vsome command\"\n" +
		"\n" +
		"Requirements = TARGET.UidDomain == \"cs.wisc.edu\" && \\\n" +
		"               HasSingularity\n"
	if got != want {
		t.Errorf("Patch =\n%q\nwant\n%q", got, want)
	}
}

func TestDescriptor_FindIsCaseInsensitive(t *testing.T) {
	d := Parse("Universe = vanilla\nrequirements = (Memory > 1024)\nARGUMENTS = x\n")
	if i := d.Find("Requirements"); i != 1 {
		t.Errorf("Find(Requirements) = %d, want 1", i)
	}
	if v, ok := d.Value("arguments"); !ok || v != "x" {
		t.Errorf("Value(arguments) = %q, %v", v, ok)
	}
	if d.Find("queue") != -1 {
		t.Error("Find(queue) found a directive")
	}
}

func TestPrependArguments_Missing(t *testing.T) {
	d := Parse("universe = vanilla\n")
	if d.PrependArguments("x") {
		t.Error("PrependArguments reported success without an arguments directive")
	}
	if d.String() != "universe = vanilla\n" {
		t.Errorf("descriptor changed: %q", d.String())
	}
}

func TestPatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sub")
	if err := os.WriteFile(path, []byte(subOneReq), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := PatchFile(path, Overrides{}); err != nil {
		t.Fatalf("PatchFile: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != subOneReq {
		t.Fatalf("zero overrides changed file:\n%s", data)
	}

	if err := PatchFile(path, Overrides{SingularityImage: "image.sif"}); err != nil {
		t.Fatalf("PatchFile: %v", err)
	}
	data, _ = os.ReadFile(path)
	if !strings.HasPrefix(string(data), "+SingularityImage = image.sif\n") {
		t.Errorf("file not patched:\n%s", data)
	}
	fi, _ := os.Stat(path)
	if fi.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", fi.Mode().Perm())
	}
}

func TestPatchFile_Missing(t *testing.T) {
	err := PatchFile(filepath.Join(t.TempDir(), "missing.sub"), Overrides{Arguments: "x"})
	if !os.IsNotExist(err) {
		t.Errorf("error = %v, want not-exist", err)
	}
}

func TestDescriptor_FindSkipsContinuationLines(t *testing.T) {
	d := Parse("Requirements = (A == 1) && \\\n    arguments == 2\narguments = \"x\"\n")
	if i := d.Find("arguments"); i != 2 {
		t.Errorf("Find(arguments) = %d, want 2", i)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRepatch_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "omicron.sub")
	if err := os.WriteFile(path, []byte(subOneReq), 0o640); err != nil {
		t.Fatal(err)
	}
	o := Overrides{Arguments: "-v", SingularityImage: "image.sif"}

	if err := Repatch(path, o); err != nil {
		t.Fatalf("Repatch: %v", err)
	}
	first := readFile(t, path)
	want := Patch(subOneReq, o) + "# patched by omicron from omicron.sub.orig\n"
	if first != want {
		t.Errorf("patched =\n%s\nwant\n%s", first, want)
	}
	if got := readFile(t, path+PristineSuffix); got != subOneReq {
		t.Errorf("pristine copy =\n%s", got)
	}

	if err := Repatch(path, o); err != nil {
		t.Fatalf("second Repatch: %v", err)
	}
	if got := readFile(t, path); got != first {
		t.Errorf("second Repatch changed the file:\n%s", got)
	}
	fi, _ := os.Stat(path)
	if fi.Mode().Perm() != 0o640 {
		t.Errorf("mode = %v, want 0640", fi.Mode().Perm())
	}
}

func TestRepatch_NewOverridesApplyToPristine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "omicron.sub")
	if err := os.WriteFile(path, []byte(subNoReqs), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Repatch(path, Overrides{SingularityImage: "old.sif"}); err != nil {
		t.Fatal(err)
	}
	if err := Repatch(path, Overrides{SingularityImage: "new.sif"}); err != nil {
		t.Fatal(err)
	}
	got := readFile(t, path)
	if strings.Contains(got, "old.sif") || strings.Count(got, "+SingularityImage") != 1 {
		t.Errorf("stale overrides kept:\n%s", got)
	}

	if err := Repatch(path, Overrides{}); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, path); got != subNoReqs {
		t.Errorf("zero overrides did not restore pristine description:\n%s", got)
	}
}

func TestRepatch_RegeneratedFileReplacesPristine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "omicron.sub")
	if err := os.WriteFile(path, []byte(subNoReqs), 0o644); err != nil {
		t.Fatal(err)
	}
	o := Overrides{SingularityImage: "image.sif"}
	if err := Repatch(path, o); err != nil {
		t.Fatal(err)
	}

	// The DAG generator writes a fresh description.
	if err := os.WriteFile(path, []byte(subMultiReqs), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Repatch(path, o); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, path+PristineSuffix); got != subMultiReqs {
		t.Errorf("pristine copy not refreshed:\n%s", got)
	}
	if got := readFile(t, path); !strings.HasPrefix(got, Patch(subMultiReqs, o)) {
		t.Errorf("regenerated description not patched:\n%s", got)
	}
}

func TestRepatch_MissingPristine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "omicron.sub")
	if err := os.WriteFile(path, []byte(subNoReqs), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Repatch(path, Overrides{Arguments: "-v"}); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(path + PristineSuffix); err != nil {
		t.Fatal(err)
	}
	if err := Repatch(path, Overrides{Arguments: "-v"}); err == nil {
		t.Error("expected error when the pristine copy is gone")
	}
}
