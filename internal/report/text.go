package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/unbound-force/typesafe/internal/taxonomy"
)

// TextOptions controls optional text output.
type TextOptions struct {
	// Verbose lists passing files as well as failing ones.
	Verbose bool

	// Styles overrides DefaultStyles when non-nil.
	Styles *Styles
}

// WriteText writes results as human-readable styled text to the
// writer. Each failing file gets its listing with mismatch markers;
// a summary closes the report.
func WriteText(w io.Writer, results []*taxonomy.FileResult, opts TextOptions) error {
	s := DefaultStyles()
	if opts.Styles != nil {
		s = *opts.Styles
	}

	passed := 0
	first := true
	for _, r := range results {
		if r.Passed() {
			passed++
			if opts.Verbose {
				fmt.Fprintf(w, "%s %s\n", s.Pass.Render("PASS"), r.Name)
			}
			continue
		}
		if !first {
			fmt.Fprintln(w)
		}
		first = false
		writeOneResult(w, r, s)
	}

	failed := len(results) - passed
	if failed > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, kindTable(results, s))
	}

	status := s.Pass.Render("PASS")
	if failed > 0 {
		status = s.Fail.Render("FAIL")
	}
	fmt.Fprintf(w, "\n%s %s\n", status,
		s.Header.Render(fmt.Sprintf("%d file(s) checked, %d passed, %d failed",
			len(results), passed, failed)))

	return nil
}

// WriteResult writes a single failing file's report. Passing files
// produce no output.
func WriteResult(w io.Writer, r *taxonomy.FileResult, s Styles) {
	if r.Passed() {
		return
	}
	writeOneResult(w, r, s)
}

func writeOneResult(w io.Writer, r *taxonomy.FileResult, s Styles) {
	fmt.Fprintf(w, "%s %s\n", s.Fail.Render("FAIL"),
		s.Header.Render(fmt.Sprintf("%s (%d mismatch(es))", r.Name, len(r.Mismatches))))

	if r.Summary.Internal > 0 {
		fmt.Fprintln(w, s.Internal.Render(
			"internal error: the checker output could not be reconciled; this is not an annotation problem"))
	}

	for _, line := range RenderLines(r.Mismatches, r.Content) {
		if IsMarker(line) {
			fmt.Fprintln(w, s.Marker.Render(line))
			continue
		}
		fmt.Fprintln(w, s.Source.Render(line))
	}

	for _, m := range r.Mismatches {
		if m.Output == "" {
			continue
		}
		fmt.Fprintln(w, s.Muted.Render(fmt.Sprintf("captured checker output (%s):", m.Kind)))
		fmt.Fprint(w, indent(m.Output, "    "))
	}
}

// kindTable tabulates mismatch counts per kind across results.
func kindTable(results []*taxonomy.FileResult, s Styles) string {
	counts := make(map[taxonomy.Kind]int)
	for _, r := range results {
		for _, m := range r.Mismatches {
			counts[m.Kind]++
		}
	}

	var rows [][]string
	for _, k := range taxonomy.Kinds() {
		if c := counts[k]; c > 0 {
			rows = append(rows, []string{string(k), string(taxonomy.ClassOf(k)), fmt.Sprintf("%d", c)})
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			if col == 1 && row >= 0 && row < len(rows) {
				return s.ClassStyle(taxonomy.Class(rows[row][1]))
			}
			return s.TableCell
		}).
		Headers("KIND", "CLASS", "COUNT").
		Rows(rows...)

	return t.String()
}

func indent(text, prefix string) string {
	lines := strings.SplitAfter(text, "\n")
	var sb strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		sb.WriteString(prefix)
		sb.WriteString(l)
	}
	if !strings.HasSuffix(sb.String(), "\n") && sb.Len() > 0 {
		sb.WriteByte('\n')
	}
	return sb.String()
}
