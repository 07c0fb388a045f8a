package progress

import (
	"fmt"
	"io"
	"strings"

	"moodle/analyzer/internal/domain"
)

const barLength = 50

// Bar redraws a single console line with the classification progress.
type Bar struct {
	w io.Writer
}

func NewBar(w io.Writer) *Bar {
	return &Bar{w: w}
}

// Update draws p and ends the line once the last course is reached.
func (b *Bar) Update(p domain.Progress) {
	filled := 0
	if p.Total > 0 {
		filled = barLength * p.Index / p.Total
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("-", barLength-filled)
	fmt.Fprintf(b.w, "\rProgress: |%s| %d/%d\tFound empty courses: %d", bar, p.Index, p.Total, p.Found)

	if p.Index >= p.Total {
		fmt.Fprintln(b.w)
	}
}
