package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ASCII returns the map as plain text with a legend.
func ASCII(g *Grid) string {
	var b strings.Builder
	border := "+" + strings.Repeat("-", g.Width) + "+\n"
	b.WriteString(border)
	for _, row := range g.Rows() {
		b.WriteByte('|')
		for _, c := range row {
			b.WriteRune(c.Rune)
		}
		b.WriteString("|\n")
	}
	b.WriteString(border)
	b.WriteString(legend(g))
	return b.String()
}

// Styled returns the map coloured with the given theme. A nil theme uses
// DefaultTheme.
func Styled(g *Grid, theme *Theme) string {
	st := newStyles(theme)

	lines := make([]string, 0, g.Height)
	for _, row := range g.Rows() {
		var b strings.Builder
		for _, c := range row {
			b.WriteString(st.cell[c.Kind].Render(string(c.Rune)))
		}
		lines = append(lines, b.String())
	}
	return st.frame.Render(strings.Join(lines, "\n")) + "\n" + st.legend.Render(legend(g))
}

// ForWriter renders styled output when w is a terminal and plain text
// otherwise.
func ForWriter(w io.Writer, g *Grid) string {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return Styled(g, nil)
	}
	return ASCII(g)
}

func legend(g *Grid) string {
	var b strings.Builder
	b.WriteString("E entrance")
	for _, l := range g.Legend {
		fmt.Fprintf(&b, "  %c %s", l.Rune, l.Aisle.DisplayName())
	}
	if g.Scale < 1 {
		fmt.Fprintf(&b, "  (1 cell = %.1f m)", 1/g.Scale)
	}
	b.WriteByte('\n')
	return b.String()
}
