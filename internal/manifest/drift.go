package manifest

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// stripGeneratedAt drops the generated_at line so timestamps never count as
// drift. Line endings are normalised to "\n".
func stripGeneratedAt(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\r\n"), "\n")
	kept := lines[:0]
	for _, l := range lines {
		l = strings.TrimSuffix(l, "\r")
		if strings.HasPrefix(strings.TrimSpace(l), `"generated_at"`) {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n") + "\n"
}

// Diff compares a stored manifest with a freshly generated one, ignoring
// generated_at. It returns the changed lines prefixed with "-" (stored) and
// "+" (regenerated); an empty result means no drift.
func Diff(stored, fresh []byte) []string {
	a, b := stripGeneratedAt(string(stored)), stripGeneratedAt(string(fresh))
	if a == b {
		return nil
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out []string
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for _, l := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, prefix+" "+l)
		}
	}
	return out
}

// CheckDrift returns an error wrapping ErrManifestDrift when stored and fresh
// differ, along with the diff lines.
func CheckDrift(location string, stored, fresh []byte) ([]string, error) {
	diff := Diff(stored, fresh)
	if len(diff) == 0 {
		return nil, nil
	}
	return diff, fmt.Errorf("%w: %s", ErrManifestDrift, location)
}
