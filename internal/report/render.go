package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/unbound-force/typesafe/internal/source"
	"github.com/unbound-force/typesafe/internal/taxonomy"
)

// markerPrefix starts every mismatch line in a listing.
const markerPrefix = "E"

// Render returns content as a line-numbered listing with one marker
// line per mismatch inserted directly after the source line it
// refers to:
//
//	1| def foo(a: str) -> None:
//	2|     reveal_type(a)  # T: int
//	E| Expected revealed type to be "int" but got "str" instead
//
// Line numbers are padded so the pipes form a straight column.
// Mismatches on the same line keep their relative order. Mismatches
// not tied to a line (line 0) come before line 1; those past the
// end of the content come after the last line.
func Render(mismatches []taxonomy.Mismatch, content string) string {
	return strings.Join(RenderLines(mismatches, content), "\n")
}

// RenderLines is Render without the final join. Marker lines start
// with "E" and can be told apart with IsMarker.
func RenderLines(mismatches []taxonomy.Mismatch, content string) []string {
	lines := source.Lines(content)

	sorted := make([]taxonomy.Mismatch, len(mismatches))
	copy(sorted, mismatches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Line < sorted[j].Line
	})

	width := len(strconv.Itoa(max(len(lines), 1)))
	marker := func(m taxonomy.Mismatch) string {
		return fmt.Sprintf("%-*s| %s", width, markerPrefix, m.Detail)
	}

	out := make([]string, 0, len(lines)+len(sorted))
	next := 0
	for next < len(sorted) && sorted[next].Line < 1 {
		out = append(out, marker(sorted[next]))
		next++
	}
	for i, text := range lines {
		lineno := i + 1
		out = append(out, fmt.Sprintf("%-*d| %s", width, lineno, text))
		for next < len(sorted) && sorted[next].Line == lineno {
			out = append(out, marker(sorted[next]))
			next++
		}
	}
	for ; next < len(sorted); next++ {
		out = append(out, marker(sorted[next]))
	}
	return out
}

// IsMarker reports whether a rendered line is a mismatch marker.
func IsMarker(line string) bool {
	return strings.HasPrefix(line, markerPrefix)
}
