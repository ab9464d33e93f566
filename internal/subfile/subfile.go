// Package subfile edits generated scheduler submit descriptions.
//
// A submit description is a list of "Key = Value" directives, one per line.
// A Requirements expression may be continued over several lines, each
// continued line ending in "&& \".
package subfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	continuation     = " && \\"
	hasSingularity   = "HasSingularity"
	singularityImage = "+SingularityImage"
)

// Overrides are runtime values injected into a generated description.
type Overrides struct {
	// Arguments is prepended to the existing arguments directive.
	Arguments string
	// SingularityImage, when set, runs the job in that container image.
	SingularityImage string
}

// IsZero reports whether o changes nothing.
func (o Overrides) IsZero() bool {
	return o.Arguments == "" && o.SingularityImage == ""
}

// Descriptor is a submit description held as its physical lines.
type Descriptor struct {
	lines []string
}

// Parse splits content into lines. String reverses it exactly.
func Parse(content string) *Descriptor {
	return &Descriptor{lines: strings.Split(content, "\n")}
}

func (d *Descriptor) String() string {
	return strings.Join(d.lines, "\n")
}

// Find returns the index of the first line setting key, compared
// case-insensitively, or -1. Continuation lines never match.
func (d *Descriptor) Find(key string) int {
	continued := false
	for i, line := range d.lines {
		if !continued {
			if k, _, ok := splitDirective(line); ok && strings.EqualFold(k, key) {
				return i
			}
		}
		continued = isContinued(line)
	}
	return -1
}

// Value returns the raw value of the first directive setting key.
func (d *Descriptor) Value(key string) (string, bool) {
	i := d.Find(key)
	if i < 0 {
		return "", false
	}
	_, v, _ := splitDirective(d.lines[i])
	return v, true
}

// PrependArguments inserts " "+args at the start of the arguments value,
// inside its opening quote when it has one. It reports whether an
// arguments directive was found.
func (d *Descriptor) PrependArguments(args string) bool {
	i := d.Find("arguments")
	if i < 0 {
		return false
	}
	line := d.lines[i]
	at := valueOffset(line)
	if at < len(line) && line[at] == '"' {
		at++
	}
	d.lines[i] = line[:at] + " " + args + line[at:]
	return true
}

// RequireSingularity makes image the job's container and adds
// HasSingularity to its Requirements expression.
func (d *Descriptor) RequireSingularity(image string) {
	if r := d.Find("requirements"); r < 0 {
		d.insert(0, "Requirements = "+hasSingularity)
	} else {
		last := r
		for last+1 < len(d.lines) && isContinued(d.lines[last]) {
			last++
		}
		indent := strings.Repeat(" ", valueOffset(d.lines[r]))
		d.lines[last] = strings.TrimRight(d.lines[last], " \t") + continuation
		d.insert(last+1, indent+hasSingularity)
	}
	d.insert(0, singularityImage+" = "+image)
}

func (d *Descriptor) insert(i int, line string) {
	d.lines = append(d.lines, "")
	copy(d.lines[i+1:], d.lines[i:])
	d.lines[i] = line
}

// Patch applies o to content. Zero overrides return content unchanged.
// Applying the same overrides twice is not detected.
func Patch(content string, o Overrides) string {
	if o.IsZero() {
		return content
	}
	d := Parse(content)
	if o.Arguments != "" {
		d.PrependArguments(o.Arguments)
	}
	if o.SingularityImage != "" {
		d.RequireSingularity(o.SingularityImage)
	}
	return d.String()
}

// PatchFile rewrites the description at path with o applied. The file is
// left untouched when o is zero.
func PatchFile(path string, o Overrides) error {
	if o.IsZero() {
		return nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(Patch(string(data), o)), fi.Mode().Perm())
}

// PristineSuffix names the copy of a description kept by Repatch.
const PristineSuffix = ".orig"

func patchedMarker(path string) string {
	return "# patched by omicron from " + filepath.Base(path) + PristineSuffix + "\n"
}

// Repatch applies o to the unpatched form of the description at path, so it
// can run before every submission of the same DAG. The first call saves the
// file as path+PristineSuffix and tags the patched file with a trailing
// comment. Later calls patch the saved copy again; a file without the tag
// was regenerated and replaces the saved copy. Zero overrides restore the
// unpatched description.
func Repatch(path string, o Overrides) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	current, marker := string(data), patchedMarker(path)
	origPath := path + PristineSuffix

	pristine := current
	if strings.HasSuffix(current, marker) {
		orig, err := os.ReadFile(origPath)
		if err != nil {
			return fmt.Errorf("%s is patched but its pristine copy is unreadable: %w", path, err)
		}
		pristine = string(orig)
	} else if err := os.WriteFile(origPath, data, fi.Mode().Perm()); err != nil {
		return err
	}

	out := pristine
	if !o.IsZero() {
		out = Patch(pristine, o)
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += marker
	}
	if out == current {
		return nil
	}
	return os.WriteFile(path, []byte(out), fi.Mode().Perm())
}

func splitDirective(line string) (key, value string, ok bool) {
	k, v, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	k = strings.TrimSpace(k)
	if k == "" || strings.ContainsAny(k, " \t") {
		return "", "", false
	}
	return k, strings.TrimSpace(v), true
}

// valueOffset is the column at which the value of a directive line starts.
func valueOffset(line string) int {
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return 0
	}
	at := eq + 1
	for at < len(line) && (line[at] == ' ' || line[at] == '\t') {
		at++
	}
	return at
}

func isContinued(line string) bool {
	return strings.HasSuffix(strings.TrimRight(line, " \t"), "\\")
}
