package condor

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const rescueSuffix = ".rescue"

// FindRescueDAG returns the newest rescue file written for dagPath, that is
// the "<dagPath>.rescueNNN" with the highest NNN. The result is dagPath as
// given with the suffix appended, so "./x.dag" yields "./x.dag.rescue002".
func FindRescueDAG(dagPath string) (string, error) {
	candidates, err := filepath.Glob(escapeGlob(dagPath) + rescueSuffix + "*")
	if err != nil {
		return "", err
	}

	// Glob returns cleaned paths; match on the base name only.
	prefix := filepath.Base(dagPath) + rescueSuffix
	best, bestN := "", -1
	for _, c := range candidates {
		digits, ok := strings.CutPrefix(filepath.Base(c), prefix)
		if !ok {
			continue
		}
		if n, ok := rescueNumber(digits); ok && n > bestN {
			best, bestN = dagPath+rescueSuffix+digits, n
		}
	}
	if bestN < 0 {
		return "", &NotFoundError{Message: fmt.Sprintf("No rescue DAG files found for %s", dagPath)}
	}
	return best, nil
}

func rescueNumber(digits string) (int, bool) {
	if digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// escapeGlob quotes the characters filepath.Match treats specially.
func escapeGlob(path string) string {
	var b strings.Builder
	for _, r := range path {
		switch r {
		case '*', '?', '[', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
