package emit

import "strings"

// Formatter reflows generated source text to a maximum line width before it
// is written. Formatter failures are build defects (malformed generated
// code), never runtime conditions, and abort the build.
type Formatter interface {
	Format(src string, maxWidth int) (string, error)
}

// DefaultFormatter performs whitespace normalization: trailing spaces are
// trimmed, runs of blank lines collapse to one, and output always ends with
// a single newline. It does not rewrap statements; the renderer keeps its
// own lines under width.
type DefaultFormatter struct{}

// Format implements Formatter.
func (DefaultFormatter) Format(src string, maxWidth int) (string, error) {
	lines := strings.Split(src, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	text := strings.Join(out, "\n")
	text = strings.TrimRight(text, "\n") + "\n"
	return text, nil
}
